package model

import (
	"time"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// RolePermission is one row of the capability table.
type RolePermission struct {
	Role        role.Role `gorm:"column:role;primaryKey"`
	ResourceKey string    `gorm:"column:resource_key;primaryKey"`
	CanView     bool      `gorm:"column:can_view"`
	CanCreate   bool      `gorm:"column:can_create"`
	CanEdit     bool      `gorm:"column:can_edit"`
	CanDelete   bool      `gorm:"column:can_delete"`
	CanManage   bool      `gorm:"column:can_manage"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
