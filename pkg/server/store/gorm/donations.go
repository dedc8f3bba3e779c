package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Ensure DonationsStore implements store.DonationsStore
var _ store.DonationsStore = (*DonationsStore)(nil)

// DonationsStore implements store.DonationsStore using GORM
type DonationsStore struct {
	db *gorm.DB
}

// NewDonationsStore creates a new DonationsStore
func NewDonationsStore(db *gorm.DB) *DonationsStore {
	return &DonationsStore{db: db}
}

// ListDonations returns donations with the creator of their grid.
func (s *DonationsStore) ListDonations(ctx context.Context, opts store.ListOptions) ([]model.SupplyDonation, error) {
	query, args := childQuery("supply_donations", opts)

	var donations []model.SupplyDonation
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&donations).Error; err != nil {
		return nil, fmt.Errorf("list supply donations: %w", err)
	}
	return donations, nil
}

// CreateDonation inserts a donation for an existing grid.
func (s *DonationsStore) CreateDonation(ctx context.Context, donation *model.SupplyDonation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := gridOwner(tx, donation.GridID)
		if err != nil {
			return err
		}
		if err := tx.Create(donation).Error; err != nil {
			return fmt.Errorf("create supply donation: %w", err)
		}
		donation.GridCreatorID = owner
		return nil
	})
}
