package role

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRoleString(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"guest", RoleGuest},
		{"user", RoleUser},
		{"grid_manager", RoleGridManager},
		{"admin", RoleAdmin},
		{"super_admin", RoleSuperAdmin},
		{"SUPER_ADMIN", RoleSuperAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := RoleString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}

	_, err := RoleString("root")
	assert.Error(t, err)
}

func TestRoleZeroValueIsGuest(t *testing.T) {
	var r Role
	assert.Equal(t, RoleGuest, r)
	assert.Equal(t, "guest", r.String())
}

func TestIsAdminTier(t *testing.T) {
	expected := map[Role]bool{
		RoleGuest:       false,
		RoleUser:        false,
		RoleGridManager: false,
		RoleAdmin:       true,
		RoleSuperAdmin:  true,
	}
	for _, r := range RoleValues() {
		assert.Equal(t, expected[r], r.IsAdminTier(), r.String())
	}
	assert.False(t, Role(42).IsAdminTier())
}

func TestOutranks(t *testing.T) {
	assert.True(t, RoleSuperAdmin.Outranks(RoleSuperAdmin))
	assert.True(t, RoleSuperAdmin.Outranks(RoleAdmin))
	assert.True(t, RoleAdmin.Outranks(RoleGridManager))
	assert.False(t, RoleAdmin.Outranks(RoleSuperAdmin))
	assert.False(t, RoleUser.Outranks(RoleGuest))
	assert.False(t, RoleAdmin.Outranks(Role(9)))
}

func TestRoleJSONAndYAML(t *testing.T) {
	data, err := json.Marshal(RoleGridManager)
	require.NoError(t, err)
	assert.Equal(t, `"grid_manager"`, string(data))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &r))
	assert.Equal(t, RoleAdmin, r)
	assert.Error(t, json.Unmarshal([]byte(`"owner"`), &r))

	var doc struct {
		Role Role `yaml:"role"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("role: super_admin\n"), &doc))
	assert.Equal(t, RoleSuperAdmin, doc.Role)
}

func TestRoleScan(t *testing.T) {
	var r Role
	require.NoError(t, r.Scan([]byte("user")))
	assert.Equal(t, RoleUser, r)

	assert.Error(t, r.Scan("volunteer"))
	assert.Error(t, r.Scan(12))

	v, err := RoleAdmin.Value()
	require.NoError(t, err)
	assert.Equal(t, "admin", v)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, []string{"view", "create", "edit", "delete", "manage"}, ActionStrings())

	a, err := ActionString("manage")
	require.NoError(t, err)
	assert.Equal(t, ActionManage, a)

	_, err = ActionString("approve")
	assert.Error(t, err)
}
