package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kasirpos/kasir/config"
	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/kasirpos/kasir/internal/identity"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct{}

func (staticProvider) SignUp(context.Context, string, string) (string, error) { return "", nil }

func (staticProvider) SignIn(context.Context, string, string) (*identity.Token, error) {
	return nil, identity.ErrInvalidCredentials
}

func (staticProvider) Verify(_ context.Context, token string) (*identity.Principal, error) {
	if token == "good" {
		return &identity.Principal{UserID: "user_1"}, nil
	}
	return nil, identity.ErrInvalidToken
}

func newTestServer(t *testing.T) (*Server, *bool) {
	t.Helper()
	cfg := config.DefaultAppConfig()
	s := New(cfg, staticProvider{}, Options{DisableMetrics: true})
	called := false
	s.ApiGET("/whoami", func(c echo.Context) error {
		called = true
		return c.JSON(http.StatusOK, Response{Status: "success", Message: "ok", Data: PrincipalID(c)})
	})
	s.Public(http.MethodGet, "/boom", func(c echo.Context) error {
		return apperr.Upstream(apperr.CodeDatabase, "Failed to query", errors.New("db down"))
	})
	s.Public(http.MethodGet, "/panic", func(c echo.Context) error {
		panic("kaboom")
	})
	return s, &called
}

func do(s *Server, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuthMissingToken(t *testing.T) {
	s, called := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/v1/whoami", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, apperr.CodeAuthRequired, body["error_code"])
	assert.Equal(t, "Unauthorized: No token provided", body["message"])
	assert.False(t, *called)
}

func TestAuthInvalidToken(t *testing.T) {
	s, called := newTestServer(t)

	for _, header := range []string{"Bearer forged", "Token good", "Bearer "} {
		rec := do(s, http.MethodGet, "/api/v1/whoami", header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
		assert.Equal(t, apperr.CodeInvalidToken, decode(t, rec)["error_code"], header)
	}
	assert.False(t, *called)
}

func TestAuthValidToken(t *testing.T) {
	s, called := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/v1/whoami", "Bearer good")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user_1", decode(t, rec)["data"])
	assert.True(t, *called)
}

func TestAppErrorEnvelope(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/v1/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, apperr.CodeDatabase, body["error_code"])
	assert.Equal(t, "db down", body["error"])
}

func TestPanicRecovered(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(s, http.MethodGet, "/api/v1/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "error", decode(t, rec)["status"])
}

func TestInvalidJSONBody(t *testing.T) {
	s, _ := newTestServer(t)
	s.Public(http.MethodPost, "/echo", func(c echo.Context) error {
		var payload map[string]interface{}
		if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, payload)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/echo", strings.NewReader("{broken"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperr.CodeInvalidRequest, decode(t, rec)["error_code"])
}
