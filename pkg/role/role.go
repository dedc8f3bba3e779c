package role

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform snake -json -yaml -sql -output role.gen.go

// Role is the acting role used for authorization decisions.
// The zero value is RoleGuest, the least privileged role.
type Role int

const (
	RoleGuest Role = iota
	RoleUser
	RoleGridManager
	RoleAdmin
	RoleSuperAdmin
)

// IsAdminTier reports whether r sees every record unredacted and may
// act as another role.
func (r Role) IsAdminTier() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleGuest, RoleUser, RoleGridManager:
		return false
	}
	return false
}

// Outranks reports whether r may assign other to a user.
// Only super_admin may hand out super_admin.
func (r Role) Outranks(other Role) bool {
	if !r.IsARole() || !other.IsARole() {
		return false
	}
	if other == RoleSuperAdmin {
		return r == RoleSuperAdmin
	}
	return r.IsAdminTier()
}
