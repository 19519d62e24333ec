package identity

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/domain"
	"github.com/kasirpos/kasir/internal/repository"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Local keeps bcrypt credentials in the store and signs HS256 tokens.
type Local struct {
	creds  repository.CredentialRepository
	secret []byte
	issuer string
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

var _ Provider = (*Local)(nil)

func NewLocal(creds repository.CredentialRepository, cfg config.AuthConfig) (*Local, error) {
	if strings.TrimSpace(cfg.JwtSecret) == "" {
		return nil, errors.New("auth.jwt_secret is required for the local provider")
	}
	ttl := time.Duration(cfg.TokenTTL) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Local{
		creds:  creds,
		secret: []byte(cfg.JwtSecret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}, nil
}

func (l *Local) SignUp(ctx context.Context, email, password string) (string, error) {
	uid := strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := l.Provision(ctx, uid, email, password); err != nil {
		return "", err
	}
	return uid, nil
}

// Provision stores a credential under a caller chosen user id.
func (l *Local) Provision(ctx context.Context, uid, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	err = l.creds.Create(ctx, &domain.Credential{
		UserID:       uid,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    l.now(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrEmailExists
	}
	return errors.Wrap(err, "store credential")
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*Token, error) {
	cred, err := l.creds.GetByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.Wrap(err, "load credential")
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := l.now()
	exp := now.Add(l.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.UserID,
			Issuer:    l.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(l.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}
	return &Token{Value: signed, ExpiresAt: exp}, nil
}

func (l *Local) Verify(_ context.Context, raw string) (*Principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return l.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	if l.issuer != "" && !c.VerifyIssuer(l.issuer, true) {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: c.Subject, Email: c.Email}, nil
}
