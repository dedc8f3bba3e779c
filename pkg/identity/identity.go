package identity

import (
	"context"
	"net"
	"time"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/privacy"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the caller of a request.
// It combines session claims with request-specific context.
type Identity struct {
	// Session claims. UserID is empty for an unauthenticated caller.
	UserID    string
	Email     string
	Role      role.Role
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	ActingRole role.Role // Role used for every decision on this request
	Override   string    // X-View-As-Role header, if it was accepted
	RemoteIP   net.IP    // Client IP address
}

// Guest returns the identity of an unauthenticated caller.
func Guest() *Identity {
	return &Identity{Role: role.RoleGuest, ActingRole: role.RoleGuest}
}

// FromUser creates an Identity for a stored user. The acting role starts as
// the stored role.
func FromUser(u *model.User) *Identity {
	return &Identity{
		UserID:     u.ID,
		Email:      u.Email,
		Role:       u.Role,
		ActingRole: u.Role,
	}
}

// WithSession sets the session timestamps.
func (i *Identity) WithSession(issuedAt, expiresAt time.Time) *Identity {
	i.IssuedAt = issuedAt
	i.ExpiresAt = expiresAt
	return i
}

// WithActingRole sets the role resolved for this request.
func (i *Identity) WithActingRole(r role.Role, override string) *Identity {
	i.ActingRole = r
	i.Override = override
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Authenticated returns true if the caller presented a valid session.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != ""
}

// Viewer returns the privacy viewer for this request. Acting as guest drops
// the user id so that the caller sees exactly what an anonymous caller sees.
func (i *Identity) Viewer() privacy.Viewer {
	if i == nil || i.ActingRole == role.RoleGuest {
		return privacy.Guest
	}
	return privacy.Viewer{ID: i.UserID, Role: i.ActingRole}
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// FromContext returns the Identity in ctx, or a guest identity when none was
// set.
func FromContext(ctx context.Context) *Identity {
	if id, ok := Get(ctx); ok && id != nil {
		return id
	}
	return Guest()
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
