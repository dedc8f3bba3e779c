package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

func TestRuleAllows(t *testing.T) {
	rule := Rule{Role: role.RoleUser, ResourceKey: "grids", CanView: true, CanCreate: true}

	assert.True(t, rule.Allows(role.ActionView))
	assert.True(t, rule.Allows(role.ActionCreate))
	assert.False(t, rule.Allows(role.ActionEdit))
	assert.False(t, rule.Allows(role.ActionDelete))
	assert.False(t, rule.Allows(role.ActionManage))
	assert.False(t, rule.Allows(role.Action(99)))
}

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{
			name:  "valid",
			rules: []Rule{{Role: role.RoleGuest, ResourceKey: "grids"}, {Role: role.RoleUser, ResourceKey: "grids"}},
		},
		{
			name:    "missing resource key",
			rules:   []Rule{{Role: role.RoleGuest}},
			wantErr: true,
		},
		{
			name:    "unknown role",
			rules:   []Rule{{Role: role.Role(17), ResourceKey: "grids"}},
			wantErr: true,
		},
		{
			name:    "unknown resource key",
			rules:   []Rule{{Role: role.RoleGuest, ResourceKey: "gridz", CanView: true}},
			wantErr: true,
		},
		{
			name:    "duplicate pair",
			rules:   []Rule{{Role: role.RoleAdmin, ResourceKey: "users"}, {Role: role.RoleAdmin, ResourceKey: "users", CanView: true}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBatch(tt.rules)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRule))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	rules := []Rule{
		{Role: role.RoleUser, ResourceKey: "grids", CanView: true, CanCreate: true},
		{Role: role.RoleUser, ResourceKey: "announcements", CanView: true},
	}

	assert.True(t, HasPermission(rules, "grids", role.ActionCreate))
	assert.False(t, HasPermission(rules, "announcements", role.ActionCreate))

	for _, action := range role.ActionValues() {
		assert.False(t, HasPermission(rules, "users", action), action.String())
		assert.False(t, HasPermission(nil, "grids", action), action.String())
	}
}

func TestRuleWith(t *testing.T) {
	base := Rule{Role: role.RoleGuest, ResourceKey: "grids", CanView: true}

	for _, action := range role.ActionValues() {
		granted := base.With(action, true)
		assert.True(t, granted.Allows(action), action.String())

		revoked := granted.With(action, false)
		assert.False(t, revoked.Allows(action), action.String())
	}
	assert.True(t, base.CanView, "With must not modify the receiver")
	assert.False(t, base.With(role.ActionView, false).CanView)
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "guest/grids:v----", Rule{Role: role.RoleGuest, ResourceKey: ResourceGrids, CanView: true}.String())
	assert.Equal(t, "super_admin/audit_logs:v---m",
		Rule{Role: role.RoleSuperAdmin, ResourceKey: ResourceAuditLogs, CanView: true, CanManage: true}.String())
	assert.Equal(t, "user/supplies:-----", Rule{Role: role.RoleUser, ResourceKey: ResourceSupplies}.String())
}
