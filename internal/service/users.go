package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Address  string `json:"address" validate:"required"`
}

// LoginResult is returned by Authenticate. Token carries the "Bearer " prefix.
type LoginResult struct {
	Token string `json:"token"`
	Exp   int64  `json:"exp"`
}

type userPatch struct {
	Name    *string `mapstructure:"name"`
	Email   *string `mapstructure:"email"`
	Address *string `mapstructure:"address"`
}

type UserService struct {
	users    repository.UserRepository
	idp      identity.Provider
	validate *validator.Validate
	now      func() time.Time
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)

	if err := s.validate.Struct(in); err != nil {
		return nil, registerValidationError(err)
	}

	uid, err := s.idp.SignUp(ctx, in.Email, in.Password)
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		return nil, apperr.Conflict(apperr.CodeEmailExists, "Email is already registered")
	case err != nil:
		return nil, apperr.Upstream(apperr.CodeIdentityProvider, "Failed to register user", err)
	}

	now := s.now()
	user := &domain.User{
		ID:        uid,
		Name:      in.Name,
		Email:     in.Email,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err, "Failed to save user profile")
	}
	zap.L().Info("user registered", zap.String("namespace", "users"), zap.String("uid", uid))
	return user, nil
}

func registerValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "email":
				return apperr.Validation(apperr.CodeInvalidRequest, "Invalid email format.")
			case "min":
				return apperr.Validation(apperr.CodeInvalidRequest, "Password must be at least 6 characters.")
			}
		}
	}
	return apperr.Validation(apperr.CodeInvalidRequest, "All fields (name, email, password, address) are required.")
}

func (s *UserService) Authenticate(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "Email and password are required.")
	}
	token, err := s.idp.SignIn(ctx, email, password)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		return nil, apperr.Authentication(apperr.CodeInvalidCredentials, "Invalid email or password.")
	case err != nil:
		return nil, apperr.Upstream(apperr.CodeIdentityProvider, "Failed to sign in", err)
	}
	return &LoginResult{
		Token: "Bearer " + token.Value,
		Exp:   token.ExpiresAt.Unix(),
	}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, storeError(err, "Failed to fetch user")
	}
	return user, nil
}

// Update applies the name, email and address keys of fields. Unknown keys
// and blank values are ignored.
func (s *UserService) Update(ctx context.Context, id string, fields map[string]interface{}) (*domain.User, error) {
	var patch userPatch
	if err := mapstructure.Decode(fields, &patch); err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidRequest, "Invalid user fields")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := trimmed(patch.Name); v != "" {
		user.Name = v
	}
	if v := strings.ToLower(trimmed(patch.Email)); v != "" {
		if s.validate.Var(v, "email") != nil {
			return nil, apperr.Validation(apperr.CodeInvalidRequest, "Invalid email format.")
		}
		user.Email = v
	}
	if v := trimmed(patch.Address); v != "" {
		user.Address = v
	}
	user.UpdatedAt = s.now()

	err = s.users.Update(ctx, user)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeUserNotFound, "User not found")
	}
	if err != nil {
		return nil, storeError(err, "Failed to update user")
	}
	return user, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
