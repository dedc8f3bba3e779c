package store

import (
	"context"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// GridFilter narrows ListGrids.
type GridFilter struct {
	GridType string
	Status   string
	Limit    int
	Offset   int
}

// GridsStore abstracts grid storage operations
type GridsStore interface {
	// ListGrids returns grids, newest first.
	ListGrids(ctx context.Context, filter GridFilter) ([]model.Grid, error)

	// FetchGrid returns one grid, or ErrNotFound.
	FetchGrid(ctx context.Context, id string) (*model.Grid, error)

	// CreateGrid inserts a grid.
	CreateGrid(ctx context.Context, grid *model.Grid) error
}
