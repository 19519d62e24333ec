package gormrepo

import (
	"context"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(t).Error; err != nil {
			return err
		}
		return insertItems(tx, t)
	})
}

func insertItems(tx *gorm.DB, t *domain.Transaction) error {
	if len(t.Items) == 0 {
		return nil
	}
	for i := range t.Items {
		t.Items[i].ID = 0
		t.Items[i].TransactionID = t.ID
		t.Items[i].Position = i
	}
	return tx.Create(&t.Items).Error
}

func (r *TransactionRepository) List(ctx context.Context, owner string, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", owner)
	if !filter.From.IsZero() {
		query = query.Where("timestamp >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("timestamp <= ?", filter.To)
	}

	var txs []*domain.Transaction
	err := query.
		Preload("Items", orderedItems).
		Order("timestamp ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *TransactionRepository) GetByID(ctx context.Context, owner string, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("user_id = ? AND id = ?", owner, id).
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Transaction{}).
			Where("user_id = ? AND id = ?", t.UserID, t.ID).
			Updates(map[string]interface{}{
				"total_price": t.TotalPrice,
				"updated_at":  t.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&domain.TransactionItem{}).Error; err != nil {
			return err
		}
		return insertItems(tx, t)
	})
}

func (r *TransactionRepository) Delete(ctx context.Context, owner string, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", owner, id).Delete(&domain.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repository.ErrNotFound
		}
		return tx.Where("transaction_id = ?", id).Delete(&domain.TransactionItem{}).Error
	})
}
