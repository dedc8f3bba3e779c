// Package role defines the closed set of roles and capability actions
// shared by the role resolver, the permission store and the privacy
// filter.
//
// Both enums are generated with enumer so that every layer parses and
// prints them the same way (JSON, YAML and SQL):
//
//	r, err := role.RoleString("grid_manager")
//	if err != nil {
//	    // not a known role
//	}
//	if r.IsAdminTier() {
//	    // admin or super_admin
//	}
package role
