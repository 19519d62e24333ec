package boltrepo

import (
	"context"
	"strings"
	"time"

	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	bolt "go.etcd.io/bbolt"
)

type UserRepository struct {
	db *bolt.DB
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b, err := ensureOwnerBucket(tx, user.ID, nil)
		if err != nil {
			return err
		}
		if b.Get(keyProfile) != nil {
			return repository.ErrDuplicate
		}
		return put(b, keyProfile, user)
	})
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, id, nil)
		if b == nil {
			return repository.ErrNotFound
		}
		data := b.Get(keyProfile)
		if data == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(data, &user)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := ownerBucket(tx, user.ID, nil)
		if b == nil {
			return repository.ErrNotFound
		}
		data := b.Get(keyProfile)
		if data == nil {
			return repository.ErrNotFound
		}
		var stored domain.User
		if err := json.Unmarshal(data, &stored); err != nil {
			return err
		}
		stored.Name = user.Name
		stored.Email = user.Email
		stored.Address = user.Address
		stored.UpdatedAt = user.UpdatedAt
		return put(b, keyProfile, &stored)
	})
}

type CredentialRepository struct {
	db *bolt.DB
}

// credentialDoc keeps the hash, which domain.Credential hides from JSON
type credentialDoc struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

func (r *CredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		key := emailKey(cred.Email)
		if b.Get(key) != nil {
			return repository.ErrDuplicate
		}
		return put(b, key, credentialDoc{
			UserID:       cred.UserID,
			Email:        cred.Email,
			PasswordHash: cred.PasswordHash,
			CreatedAt:    cred.CreatedAt.Unix(),
		})
	})
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var doc credentialDoc
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCredentials).Get(emailKey(email))
		if data == nil {
			return repository.ErrNotFound
		}
		return json.Unmarshal(data, &doc)
	})
	if err != nil {
		return nil, err
	}
	return &domain.Credential{
		UserID:       doc.UserID,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    time.Unix(doc.CreatedAt, 0),
	}, nil
}
