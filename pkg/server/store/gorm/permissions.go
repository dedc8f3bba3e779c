package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Ensure PermissionsStore implements store.PermissionsStore
var _ store.PermissionsStore = (*PermissionsStore)(nil)

// PermissionsStore implements store.PermissionsStore using GORM
type PermissionsStore struct {
	db *gorm.DB
}

// NewPermissionsStore creates a new PermissionsStore
func NewPermissionsStore(db *gorm.DB) *PermissionsStore {
	return &PermissionsStore{db: db}
}

// LoadRules reads the whole role_permissions table in one query.
func (s *PermissionsStore) LoadRules(ctx context.Context) ([]permission.Rule, error) {
	var rows []model.RolePermission
	if err := s.db.WithContext(ctx).Order("role, resource_key").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load role permissions: %w", err)
	}

	rules := make([]permission.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, permission.Rule{
			Role:        row.Role,
			ResourceKey: row.ResourceKey,
			CanView:     row.CanView,
			CanCreate:   row.CanCreate,
			CanEdit:     row.CanEdit,
			CanDelete:   row.CanDelete,
			CanManage:   row.CanManage,
		})
	}
	return rules, nil
}

// SaveRules upserts every rule in a single transaction. Rows not named in
// rules are left untouched.
func (s *PermissionsStore) SaveRules(ctx context.Context, rules []permission.Rule) error {
	if len(rules) == 0 {
		return nil
	}

	rows := make([]model.RolePermission, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, model.RolePermission{
			Role:        r.Role,
			ResourceKey: r.ResourceKey,
			CanView:     r.CanView,
			CanCreate:   r.CanCreate,
			CanEdit:     r.CanEdit,
			CanDelete:   r.CanDelete,
			CanManage:   r.CanManage,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "role"}, {Name: "resource_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"can_view", "can_create", "can_edit", "can_delete", "can_manage", "updated_at",
			}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("save role permissions: %w", err)
	}
	return nil
}
