package boltrepo

import (
	"context"
	"sort"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	bolt "go.etcd.io/bbolt"
)

// TransactionRepository stores each transaction as one document, so a single
// Put covers the header and all of its line items.
type TransactionRepository struct {
	db *bolt.DB
}

func decodeTransaction(data []byte) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	for i := range t.Items {
		t.Items[i].TransactionID = t.ID
		t.Items[i].Position = i
	}
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := ensureOwnerBucket(tx, t.UserID, bucketTransactions)
		if err != nil {
			return err
		}
		key := itob(t.ID)
		if b.Get(key) != nil {
			return repository.ErrDuplicate
		}
		return put(b, key, t)
	})
}

func (r *TransactionRepository) List(ctx context.Context, owner string, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	txs := make([]*domain.Transaction, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketTransactions)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			t, err := decodeTransaction(v)
			if err != nil {
				return err
			}
			if filter.Match(t.Timestamp) {
				txs = append(txs, t)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Timestamp.Before(txs[j].Timestamp)
	})
	return txs, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, owner string, id int64) (*domain.Transaction, error) {
	var t *domain.Transaction
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketTransactions)
		if b == nil {
			return repository.ErrNotFound
		}
		data := b.Get(itob(id))
		if data == nil {
			return repository.ErrNotFound
		}
		var err error
		t, err = decodeTransaction(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, t.UserID, bucketTransactions)
		if b == nil {
			return repository.ErrNotFound
		}
		key := itob(t.ID)
		data := b.Get(key)
		if data == nil {
			return repository.ErrNotFound
		}
		stored, err := decodeTransaction(data)
		if err != nil {
			return err
		}
		stored.Items = t.Items
		stored.TotalPrice = t.TotalPrice
		stored.UpdatedAt = t.UpdatedAt
		return put(b, key, stored)
	})
}

func (r *TransactionRepository) Delete(ctx context.Context, owner string, id int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketTransactions)
		if b == nil {
			return repository.ErrNotFound
		}
		key := itob(id)
		if b.Get(key) == nil {
			return repository.ErrNotFound
		}
		return b.Delete(key)
	})
}
