package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Ensure VolunteersStore implements store.VolunteersStore
var _ store.VolunteersStore = (*VolunteersStore)(nil)

// VolunteersStore implements store.VolunteersStore using GORM
type VolunteersStore struct {
	db *gorm.DB
}

// NewVolunteersStore creates a new VolunteersStore
func NewVolunteersStore(db *gorm.DB) *VolunteersStore {
	return &VolunteersStore{db: db}
}

// ListRegistrations returns registrations with the creator of their grid.
func (s *VolunteersStore) ListRegistrations(ctx context.Context, opts store.ListOptions) ([]model.VolunteerRegistration, error) {
	query, args := childQuery("volunteer_registrations", opts)

	var regs []model.VolunteerRegistration
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&regs).Error; err != nil {
		return nil, fmt.Errorf("list volunteer registrations: %w", err)
	}
	return regs, nil
}

// CreateRegistration inserts reg and bumps the grid's registered count.
func (s *VolunteersStore) CreateRegistration(ctx context.Context, reg *model.VolunteerRegistration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := gridOwner(tx, reg.GridID)
		if err != nil {
			return err
		}
		if err := tx.Create(reg).Error; err != nil {
			return fmt.Errorf("create volunteer registration: %w", err)
		}
		err = tx.Exec(`UPDATE grids SET volunteer_registered = volunteer_registered + 1 WHERE id = ?`, reg.GridID).Error
		if err != nil {
			return fmt.Errorf("update registered count: %w", err)
		}
		reg.GridCreatorID = owner
		return nil
	})
}

// childQuery selects rows of a grid child table joined with the grid's
// creator, optionally scoped to one grid.
func childQuery(table string, opts store.ListOptions) (string, []interface{}) {
	query := `
		SELECT c.*, COALESCE(g.created_by_id, '') AS grid_created_by_id
		FROM ` + table + ` c
		JOIN grids g ON g.id = c.grid_id
	`
	var args []interface{}

	if opts.GridID != "" {
		query += ` WHERE c.grid_id = ?`
		args = append(args, opts.GridID)
	}

	query += ` ORDER BY c.created_at DESC, c.id`

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}
	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}
	return query, args
}

// gridOwner returns the creator of grid id, or store.ErrNotFound.
func gridOwner(tx *gorm.DB, id string) (string, error) {
	type ownerRow struct {
		CreatedByID *string
	}
	var rows []ownerRow
	if err := tx.Raw(`SELECT created_by_id FROM grids WHERE id = ?`, id).Scan(&rows).Error; err != nil {
		return "", fmt.Errorf("fetch grid %s: %w", id, err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("grid %s: %w", id, store.ErrNotFound)
	}
	if rows[0].CreatedByID == nil {
		return "", nil
	}
	return *rows[0].CreatedByID, nil
}
