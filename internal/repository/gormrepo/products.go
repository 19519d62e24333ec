package gormrepo

import (
	"context"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepository) List(ctx context.Context, owner string) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("id ASC").
		Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetByID(ctx context.Context, owner string, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", owner, id).
		First(&product).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	res := r.db.WithContext(ctx).
		Model(product).
		Where("user_id = ?", product.UserID).
		Select("name", "price", "embedding", "updated_at").
		Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, owner string, id int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", owner, id).
		Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
