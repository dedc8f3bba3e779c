package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// UsersStore abstracts account storage operations
type UsersStore interface {
	// FetchUser returns the user with id, or ErrNotFound.
	FetchUser(ctx context.Context, id string) (*model.User, error)

	// FetchUserByEmail returns the user with email, or ErrNotFound.
	FetchUserByEmail(ctx context.Context, email string) (*model.User, error)

	// ListUsers returns users ordered by creation time.
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, error)

	// CreateUser inserts a user. Returns ErrConflict for a taken email.
	CreateUser(ctx context.Context, user *model.User) error

	// UpdateUserRole changes the stored role of a user.
	// Returns ErrNotFound if the user doesn't exist.
	UpdateUserRole(ctx context.Context, id string, r role.Role) error
}
