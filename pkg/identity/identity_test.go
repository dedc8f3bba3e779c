package identity

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/privacy"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name     string
		id       *Identity
		override string
		expected role.Role
		err      error
	}{
		{
			name:     "unauthenticated",
			expected: role.RoleGuest,
		},
		{
			name:     "unauthenticated with override",
			override: "admin",
			err:      ErrAuthorization,
		},
		{
			name:     "stored role",
			id:       &Identity{UserID: "u1", Role: role.RoleGridManager},
			expected: role.RoleGridManager,
		},
		{
			name:     "admin views as guest",
			id:       &Identity{UserID: "u1", Role: role.RoleAdmin},
			override: "guest",
			expected: role.RoleGuest,
		},
		{
			name:     "super admin views as user",
			id:       &Identity{UserID: "u1", Role: role.RoleSuperAdmin},
			override: " user ",
			expected: role.RoleUser,
		},
		{
			name:     "admin cannot act as super admin",
			id:       &Identity{UserID: "u1", Role: role.RoleAdmin},
			override: "super_admin",
			err:      ErrAuthorization,
		},
		{
			name:     "admin views as admin",
			id:       &Identity{UserID: "u1", Role: role.RoleAdmin},
			override: "admin",
			expected: role.RoleAdmin,
		},
		{
			name:     "super admin views as admin",
			id:       &Identity{UserID: "u1", Role: role.RoleSuperAdmin},
			override: "admin",
			expected: role.RoleAdmin,
		},
		{
			name:     "user cannot override",
			id:       &Identity{UserID: "u1", Role: role.RoleUser},
			override: "admin",
			err:      ErrAuthorization,
		},
		{
			name:     "grid manager cannot downgrade either",
			id:       &Identity{UserID: "u1", Role: role.RoleGridManager},
			override: "guest",
			err:      ErrAuthorization,
		},
		{
			name:     "unknown override",
			id:       &Identity{UserID: "u1", Role: role.RoleAdmin},
			override: "root",
			err:      ErrAuthorization,
		},
		{
			name: "corrupt stored role",
			id:   &Identity{UserID: "u1", Role: role.Role(42)},
			err:  ErrAuthentication,
		},
		{
			name:     "corrupt stored role with override",
			id:       &Identity{UserID: "u1", Role: role.Role(-1)},
			override: "guest",
			err:      ErrAuthentication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRole(tt.id, tt.override)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestViewer(t *testing.T) {
	var nilID *Identity
	assert.Equal(t, privacy.Guest, nilID.Viewer())
	assert.Equal(t, privacy.Guest, Guest().Viewer())

	id := &Identity{UserID: "u1", Role: role.RoleAdmin, ActingRole: role.RoleAdmin}
	assert.Equal(t, privacy.Viewer{ID: "u1", Role: role.RoleAdmin}, id.Viewer())

	id.WithActingRole(role.RoleUser, "user")
	assert.Equal(t, privacy.Viewer{ID: "u1", Role: role.RoleUser}, id.Viewer())

	id.WithActingRole(role.RoleGuest, "guest")
	assert.Equal(t, privacy.Guest, id.Viewer())
}

func TestIdentity_WithMethods(t *testing.T) {
	id := FromUser(&model.User{ID: "u1", Email: "a@example.com", Role: role.RoleGridManager})
	assert.Equal(t, role.RoleGridManager, id.ActingRole)
	assert.True(t, id.Authenticated())

	// Test chaining
	ip := net.ParseIP("192.168.1.100")
	iat := time.Unix(1700000000, 0)
	id.WithSession(iat, iat.Add(time.Hour)).
		WithActingRole(role.RoleGuest, "guest").
		WithRemoteIP(ip)

	assert.Equal(t, iat, id.IssuedAt)
	assert.Equal(t, iat.Add(time.Hour), id.ExpiresAt)
	assert.Equal(t, role.RoleGuest, id.ActingRole)
	assert.Equal(t, "guest", id.Override)
	assert.Equal(t, ip, id.RemoteIP)
	assert.False(t, Guest().Authenticated())
}

func TestContextGetSet(t *testing.T) {
	ctx := context.Background()

	// Initially no identity
	id, ok := Get(ctx)
	assert.False(t, ok)
	assert.Nil(t, id)
	assert.Equal(t, Guest(), FromContext(ctx))

	// Set identity
	expected := &Identity{UserID: "u1", Role: role.RoleUser, ActingRole: role.RoleUser}
	ctx = Set(ctx, expected)

	// Get identity
	id, ok = Get(ctx)
	assert.True(t, ok)
	require.NotNil(t, id)
	assert.Same(t, expected, id)
	assert.Same(t, expected, FromContext(ctx))
}
