package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kasirpos/kasir/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeIdentityToolkit(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")

		reject := func(msg string) {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": 400, "message": msg},
			})
		}

		switch r.URL.Path {
		case "/v1/accounts:signUp":
			if body["email"] == "taken@example.com" {
				reject("EMAIL_EXISTS")
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"localId": "remote-uid", "idToken": "t"})
		case "/v1/accounts:signInWithPassword":
			if body["password"] != "secret" {
				reject("INVALID_PASSWORD")
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"localId": "remote-uid", "idToken": "id-token", "expiresIn": "3600"})
		case "/v1/accounts:lookup":
			if body["idToken"] != "id-token" {
				reject("INVALID_ID_TOKEN")
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"users": []map[string]string{{"localId": "remote-uid", "email": "alice@gmail.com"}},
			})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteProvider(t *testing.T) {
	srv := newFakeIdentityToolkit(t)
	r, err := NewRemote(config.AuthConfig{ProviderURL: srv.URL + "/v1/", APIKey: "test-key", Timeout: 5})
	require.NoError(t, err)
	ctx := context.Background()

	uid, err := r.SignUp(ctx, "alice@gmail.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "remote-uid", uid)

	_, err = r.SignUp(ctx, "taken@example.com", "secret")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = r.SignIn(ctx, "alice@gmail.com", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	token, err := r.SignIn(ctx, "alice@gmail.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "id-token", token.Value)

	principal, err := r.Verify(ctx, "id-token")
	require.NoError(t, err)
	assert.Equal(t, "remote-uid", principal.UserID)

	_, err = r.Verify(ctx, "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRemoteRequiresURL(t *testing.T) {
	_, err := NewRemote(config.AuthConfig{})
	assert.Error(t, err)
}
