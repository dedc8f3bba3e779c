package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// DonationsStore abstracts supply donation storage. Returned donations carry
// GridCreatorID like VolunteersStore.
type DonationsStore interface {
	ListDonations(ctx context.Context, opts ListOptions) ([]model.SupplyDonation, error)

	// CreateDonation inserts a donation. Returns ErrNotFound if the grid
	// doesn't exist.
	CreateDonation(ctx context.Context, donation *model.SupplyDonation) error
}
