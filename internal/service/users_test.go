package service

import (
	"context"
	"strings"
	"testing"

	"github.com/kasirpos/kasir/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequiresAllFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Users.Register(context.Background(), RegisterInput{Name: "Alice", Email: "alice@gmail.com", Password: "secret1"})
	assertCode(t, err, apperr.CodeInvalidRequest)
	assert.Contains(t, err.Error(), "All fields (name, email, password, address) are required.")

	_, err = f.svc.Users.Register(context.Background(), RegisterInput{Name: "Alice", Email: "not-an-email", Password: "secret1", Address: "x"})
	assertCode(t, err, apperr.CodeInvalidRequest)
	assert.Contains(t, err.Error(), "Invalid email format")
}

func TestRegisterLoginAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Users.Register(ctx, RegisterInput{Name: " Alice ", Email: "Alice@Gmail.com", Password: "wonderland", Address: "123 Wonderland"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@gmail.com", user.Email)

	_, err = f.svc.Users.Register(ctx, RegisterInput{Name: "A", Email: "alice@gmail.com", Password: "wonderland", Address: "x"})
	assertCode(t, err, apperr.CodeEmailExists)
	e, _ := apperr.From(err)
	assert.Equal(t, apperr.KindConflict, e.Kind)

	_, err = f.svc.Users.Authenticate(ctx, "alice@gmail.com", "nope")
	assertCode(t, err, apperr.CodeInvalidCredentials)
	_, err = f.svc.Users.Authenticate(ctx, "", "")
	assertCode(t, err, apperr.CodeInvalidRequest)

	login, err := f.svc.Users.Authenticate(ctx, "alice@gmail.com", "wonderland")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(login.Token, "Bearer "))
	assert.NotZero(t, login.Exp)

	got, err := f.svc.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "123 Wonderland", got.Address)
}

func TestUserGetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Users.Get(ctx, "ghost")
	assertCode(t, err, apperr.CodeUserNotFound)
	_, err = f.svc.Users.Update(ctx, "ghost", map[string]interface{}{"name": "x"})
	assertCode(t, err, apperr.CodeUserNotFound)

	user, err := f.svc.Users.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@gmail.com", Password: "wonderland", Address: "123 Wonderland"})
	require.NoError(t, err)

	updated, err := f.svc.Users.Update(ctx, user.ID, map[string]interface{}{
		"name":     "Alice Liddell",
		"address":  "   ",
		"nickname": "ali",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.Name)
	assert.Equal(t, "123 Wonderland", updated.Address)

	_, err = f.svc.Users.Update(ctx, user.ID, map[string]interface{}{"email": "broken"})
	assertCode(t, err, apperr.CodeInvalidRequest)
	_, err = f.svc.Users.Update(ctx, user.ID, map[string]interface{}{"name": 42})
	assertCode(t, err, apperr.CodeInvalidRequest)
}
