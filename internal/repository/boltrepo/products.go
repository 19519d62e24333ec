package boltrepo

import (
	"context"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	bolt "go.etcd.io/bbolt"
)

type ProductRepository struct {
	db *bolt.DB
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := ensureOwnerBucket(tx, product.UserID, bucketProducts)
		if err != nil {
			return err
		}
		key := itob(product.ID)
		if b.Get(key) != nil {
			return repository.ErrDuplicate
		}
		return put(b, key, product)
	})
}

func (r *ProductRepository) List(ctx context.Context, owner string) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketProducts)
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p domain.Product
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			products = append(products, &p)
			return nil
		})
	})
	return products, err
}

func (r *ProductRepository) GetByID(ctx context.Context, owner string, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketProducts)
		if b == nil {
			return repository.ErrNotFound
		}
		data := b.Get(itob(id))
		if data == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, product.UserID, bucketProducts)
		if b == nil {
			return repository.ErrNotFound
		}
		key := itob(product.ID)
		data := b.Get(key)
		if data == nil {
			return repository.ErrNotFound
		}
		var stored domain.Product
		if err := json.Unmarshal(data, &stored); err != nil {
			return err
		}
		stored.Name = product.Name
		stored.Price = product.Price
		stored.Embedding = product.Embedding
		stored.UpdatedAt = product.UpdatedAt
		return put(b, key, &stored)
	})
}

func (r *ProductRepository) Delete(ctx context.Context, owner string, id int64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, owner, bucketProducts)
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
