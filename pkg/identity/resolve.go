package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

var (
	// ErrAuthentication means the session is missing or corrupt.
	ErrAuthentication = errors.New("authentication required")

	// ErrAuthorization means the caller asked for a role it may not act as.
	ErrAuthorization = errors.New("role override not permitted")
)

// ResolveRole returns the acting role for a request.
//
// A nil id is an unauthenticated caller and always acts as guest; presenting
// an override without a session is an error. Authenticated callers act as
// their stored role unless they are admin-tier and override names a known
// role no higher than the stored one. An override is never silently ignored.
func ResolveRole(id *Identity, override string) (role.Role, error) {
	override = strings.TrimSpace(override)

	if id == nil {
		if override != "" {
			return role.RoleGuest, fmt.Errorf("%w: guest cannot act as %q", ErrAuthorization, override)
		}
		return role.RoleGuest, nil
	}

	if !id.Role.IsARole() {
		return role.RoleGuest, fmt.Errorf("%w: stored role %d is not valid", ErrAuthentication, int(id.Role))
	}

	if override == "" {
		return id.Role, nil
	}

	requested, err := role.RoleString(override)
	if err != nil {
		return role.RoleGuest, fmt.Errorf("%w: unknown role %q", ErrAuthorization, override)
	}
	if !id.Role.IsAdminTier() {
		return role.RoleGuest, fmt.Errorf("%w: %s cannot act as %s", ErrAuthorization, id.Role, requested)
	}
	if requested > id.Role {
		return role.RoleGuest, fmt.Errorf("%w: %s cannot act above itself as %s", ErrAuthorization, id.Role, requested)
	}
	return requested, nil
}
