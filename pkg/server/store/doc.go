// Package store provides storage abstractions for the Shovel Heroes server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// Handlers are tested against testify mocks of these interfaces; the GORM
// implementations live in the gorm subpackage.
//
// # Available Stores
//
//   - PermissionsStore: the role_permissions table behind permission.Cache
//   - UsersStore: accounts and stored roles
//   - GridsStore: work zones
//   - VolunteersStore: volunteer registrations, joined with grid ownership
//   - DonationsStore: supply donations, joined with grid ownership
//   - AnnouncementsStore: public notices
//   - HealthStore: database connectivity
//   - AuditLogsStore: the audit_logs listing, implemented by audit.Store
//
// # Usage
//
//	users := gorm.NewUsersStore(db)
//	user, err := users.FetchUser(ctx, id)
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle not found
//	    }
//	}
package store
