// Package identity issues and verifies the bearer tokens guarding the API.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// Token is a freshly issued bearer token
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Principal is the verified subject of a token
type Principal struct {
	UserID string
	Email  string
}

// Provider abstracts the identity service. Verify is called on every
// protected request, nothing is cached.
type Provider interface {
	// SignUp creates a credential and returns the new user id
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (*Token, error)
	Verify(ctx context.Context, token string) (*Principal, error)
}
