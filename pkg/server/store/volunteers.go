package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// ListOptions pages a collection. An empty GridID lists across every grid.
type ListOptions struct {
	GridID string
	Limit  int
	Offset int
}

// VolunteersStore abstracts volunteer registration storage.
//
// Every returned registration carries GridCreatorID, joined from its grid,
// so that callers can apply privacy filtering without a second query.
type VolunteersStore interface {
	ListRegistrations(ctx context.Context, opts ListOptions) ([]model.VolunteerRegistration, error)

	// CreateRegistration inserts a registration and increments the grid's
	// registered count. Returns ErrNotFound if the grid doesn't exist.
	CreateRegistration(ctx context.Context, reg *model.VolunteerRegistration) error
}
