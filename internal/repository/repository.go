// Package repository declares the persistence ports used by the services.
// Every product, transaction and audit lookup is scoped by the owning user id.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kasirpos/kasir/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository stores user profiles keyed by principal id
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Update overwrites name, email and address. ErrNotFound when the profile is absent.
	Update(ctx context.Context, user *domain.User) error
}

// CredentialRepository backs the built-in identity provider
type CredentialRepository interface {
	// Create fails with ErrDuplicate when the email is taken
	Create(ctx context.Context, cred *domain.Credential) error
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
}

// ProductRepository handles the per-owner catalog
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	List(ctx context.Context, owner string) ([]*domain.Product, error)
	GetByID(ctx context.Context, owner string, id int64) (*domain.Product, error)
	// Update writes name, price and embedding of product.UserID's product
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, owner string, id int64) error
}

// TransactionFilter limits a listing to [From, To]. Zero values are open bounds.
type TransactionFilter struct {
	From time.Time
	To   time.Time
}

// Match reports whether ts falls inside the filter bounds
func (f TransactionFilter) Match(ts time.Time) bool {
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}
	return true
}

// TransactionRepository persists transactions together with their line items.
// Create, Update and Delete are atomic.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	// List returns transactions with items, oldest first
	List(ctx context.Context, owner string, filter TransactionFilter) ([]*domain.Transaction, error)
	GetByID(ctx context.Context, owner string, id int64) (*domain.Transaction, error)
	// Update replaces the line items and total. Timestamp is left untouched.
	Update(ctx context.Context, tx *domain.Transaction) error
	Delete(ctx context.Context, owner string, id int64) error
}

// AuditRepository stores the write trail of catalog and ledger
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	// ListByUser returns the newest entries first
	ListByUser(ctx context.Context, owner string, limit int) ([]*domain.AuditLog, error)
}

// Store groups the repositories of one backend
type Store interface {
	Users() UserRepository
	Credentials() CredentialRepository
	Products() ProductRepository
	Transactions() TransactionRepository
	Audit() AuditRepository

	Ping(ctx context.Context) error
	// Migrate creates missing tables or buckets
	Migrate() error
	// Reset drops and recreates everything
	Reset() error
	Close() error
}
