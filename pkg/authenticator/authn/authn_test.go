package authn

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

type fakeUsers struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUsers) FetchUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func setup(t *testing.T) *Authenticator {
	hash, err := HashPassword([]byte("s3cret"))
	require.NoError(t, err)

	return New(&fakeUsers{users: map[string]*model.User{
		"alice@example.com":  {ID: "u1", Email: "alice@example.com", PasswordHash: hash, Role: role.RoleUser},
		"nopass@example.com": {ID: "u2", Email: "nopass@example.com"},
	}})
}

func TestAuthenticator_Name(t *testing.T) {
	assert.Equal(t, "authn", New(nil).Name())
}

func TestAuthenticator_Authenticate_Success(t *testing.T) {
	auth := setup(t)

	user, err := auth.Authenticate(context.Background(), authenticator.AuthenticatorInput{
		Login:       "  Alice@Example.com ",
		Credentials: []byte("s3cret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthenticator_Authenticate_Failures(t *testing.T) {
	auth := setup(t)

	tests := []struct {
		name  string
		input authenticator.AuthenticatorInput
	}{
		{"wrong password", authenticator.AuthenticatorInput{Login: "alice@example.com", Credentials: []byte("nope")}},
		{"unknown login", authenticator.AuthenticatorInput{Login: "bob@example.com", Credentials: []byte("s3cret")}},
		{"empty login", authenticator.AuthenticatorInput{Credentials: []byte("s3cret")}},
		{"empty password", authenticator.AuthenticatorInput{Login: "alice@example.com"}},
		{"account without password", authenticator.AuthenticatorInput{Login: "nopass@example.com", Credentials: []byte("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Authenticate(context.Background(), tt.input)
			assert.ErrorIs(t, err, authenticator.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticator_Authenticate_StoreError(t *testing.T) {
	auth := New(&fakeUsers{err: errors.New("connection refused")})

	_, err := auth.Authenticate(context.Background(), authenticator.AuthenticatorInput{
		Login:       "alice@example.com",
		Credentials: []byte("s3cret"),
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, authenticator.ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword([]byte("pw"))
	require.NoError(t, err)
	assert.NotEqual(t, "pw", hash)
	assert.True(t, CheckPassword(hash, []byte("pw")))
	assert.False(t, CheckPassword(hash, []byte("PW")))

	_, err = HashPassword(nil)
	assert.Error(t, err)
}

func TestAuthenticator_Status(t *testing.T) {
	assert.NoError(t, setup(t).Status(context.Background()))
	assert.Error(t, New(nil).Status(context.Background()))
}
