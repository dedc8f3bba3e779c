package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Ensure GridsStore implements store.GridsStore
var _ store.GridsStore = (*GridsStore)(nil)

// GridsStore implements store.GridsStore using GORM
type GridsStore struct {
	db *gorm.DB
}

// NewGridsStore creates a new GridsStore
func NewGridsStore(db *gorm.DB) *GridsStore {
	return &GridsStore{db: db}
}

// ListGrids returns grids, newest first.
func (s *GridsStore) ListGrids(ctx context.Context, filter store.GridFilter) ([]model.Grid, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC, id")
	if filter.GridType != "" {
		query = query.Where("grid_type = ?", filter.GridType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var grids []model.Grid
	if err := paginate(query, filter.Limit, filter.Offset).Find(&grids).Error; err != nil {
		return nil, fmt.Errorf("list grids: %w", err)
	}
	return grids, nil
}

// FetchGrid returns one grid.
func (s *GridsStore) FetchGrid(ctx context.Context, id string) (*model.Grid, error) {
	var grid model.Grid
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&grid).Error; err != nil {
		return nil, notFound(err, "grid %s", id)
	}
	return &grid, nil
}

// CreateGrid inserts a grid.
func (s *GridsStore) CreateGrid(ctx context.Context, grid *model.Grid) error {
	if err := s.db.WithContext(ctx).Create(grid).Error; err != nil {
		return fmt.Errorf("create grid: %w", err)
	}
	return nil
}
