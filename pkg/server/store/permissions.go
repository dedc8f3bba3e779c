package store

import (
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
)

// PermissionsStore abstracts the role_permissions table. It is the Source
// behind permission.Cache; handlers never read it directly.
type PermissionsStore interface {
	permission.Source
}
