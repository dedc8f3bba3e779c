package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Name is the registry name of the password authenticator.
const Name = "authn"

// dummyHash is compared against when the login is unknown so that a missing
// account costs as much as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shovel-heroes"), bcrypt.DefaultCost)

// Users is the subset of store.UsersStore the authenticator needs.
type Users interface {
	FetchUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Authenticator implements email and password authentication
type Authenticator struct {
	users Users
}

// Ensure Authenticator implements authenticator.Authenticator
var _ authenticator.Authenticator = (*Authenticator)(nil)

// New creates a new password authenticator
func New(users Users) *Authenticator {
	return &Authenticator{users: users}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Authenticate checks the password in input.Credentials against the stored
// hash of the user with email input.Login.
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (*model.User, error) {
	email := NormalizeEmail(input.Login)
	if email == "" || len(input.Credentials) == 0 {
		return nil, authenticator.ErrInvalidCredentials
	}

	user, err := a.users.FetchUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, input.Credentials)
			return nil, authenticator.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	if !CheckPassword(user.PasswordHash, input.Credentials) {
		return nil, authenticator.ErrInvalidCredentials
	}
	return user, nil
}

// Status checks if the authenticator is healthy
func (a *Authenticator) Status(ctx context.Context) error {
	if a.users == nil {
		return errors.New("no user store configured")
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password []byte) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash never
// matches, so accounts created without a password cannot log in.
func CheckPassword(hash string, password []byte) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), password) == nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
