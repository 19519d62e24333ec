package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	"github.com/kasirpos/kasir/config"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Remote delegates to an identity-toolkit style REST API
// (accounts:signUp, accounts:signInWithPassword, accounts:lookup).
type Remote struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

var _ Provider = (*Remote)(nil)

type remoteError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type remoteAuthResponse struct {
	remoteError
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"`
}

type remoteLookupResponse struct {
	remoteError
	Users []struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	} `json:"users"`
}

func NewRemote(cfg config.AuthConfig) (*Remote, error) {
	if cfg.ProviderURL == "" {
		return nil, errors.New("auth.provider_url is required for the remote provider")
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		baseURL: strings.TrimRight(cfg.ProviderURL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{},
	}, nil
}

func (r *Remote) call(ctx context.Context, method string, body interface{}, resp interface{}) (int, error) {
	var code int
	err := gout.New(r.client).
		POST(fmt.Sprintf("%s/accounts:%s", r.baseURL, method)).
		WithContext(ctx).
		SetTimeout(r.timeout).
		SetQuery(gout.H{"key": r.apiKey}).
		SetJSON(body).
		BindJSON(resp).
		Code(&code).
		Do()
	if err != nil {
		return code, errors.Wrapf(err, "identity provider %s", method)
	}
	return code, nil
}

func (r *Remote) SignUp(ctx context.Context, email, password string) (string, error) {
	var resp remoteAuthResponse
	code, err := r.call(ctx, "signUp", gout.H{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if code != http.StatusOK {
		if strings.HasPrefix(resp.Error.Message, "EMAIL_EXISTS") {
			return "", ErrEmailExists
		}
		return "", errors.Errorf("identity provider signUp: %d %s", code, resp.Error.Message)
	}
	return resp.LocalID, nil
}

func (r *Remote) SignIn(ctx context.Context, email, password string) (*Token, error) {
	var resp remoteAuthResponse
	code, err := r.call(ctx, "signInWithPassword", gout.H{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		switch {
		case code == http.StatusBadRequest:
			zap.L().Debug("remote sign in rejected", zap.String("reason", resp.Error.Message))
			return nil, ErrInvalidCredentials
		default:
			return nil, errors.Errorf("identity provider signIn: %d %s", code, resp.Error.Message)
		}
	}
	ttl := cast.ToInt64(resp.ExpiresIn)
	if ttl <= 0 {
		ttl = 3600
	}
	return &Token{
		Value:     resp.IDToken,
		ExpiresAt: time.Now().Add(time.Duration(ttl) * time.Second),
	}, nil
}

func (r *Remote) Verify(ctx context.Context, token string) (*Principal, error) {
	var resp remoteLookupResponse
	code, err := r.call(ctx, "lookup", gout.H{"idToken": token}, &resp)
	if err != nil {
		zap.L().Warn("identity provider lookup failed", zap.Error(err))
		return nil, ErrInvalidToken
	}
	if code != http.StatusOK || len(resp.Users) == 0 || resp.Users[0].LocalID == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{UserID: resp.Users[0].LocalID, Email: resp.Users[0].Email}, nil
}
