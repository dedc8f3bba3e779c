package permission

// Resource keys of role_permissions rows. Each gates one family of routes.
const (
	ResourceGrids           = "grids"
	ResourceVolunteers      = "volunteers"
	ResourceSupplies        = "supplies"
	ResourceAnnouncements   = "announcements"
	ResourceUsers           = "users"
	ResourceRolePermissions = "role_permissions"
	ResourceAuditLogs       = "audit_logs"
)

// ResourceKeys lists every resource key the server checks.
var ResourceKeys = []string{
	ResourceGrids,
	ResourceVolunteers,
	ResourceSupplies,
	ResourceAnnouncements,
	ResourceUsers,
	ResourceRolePermissions,
	ResourceAuditLogs,
}

// IsKnownResource reports whether key is checked by any route.
func IsKnownResource(key string) bool {
	for _, k := range ResourceKeys {
		if k == key {
			return true
		}
	}
	return false
}
