package permission

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

const sampleSeed = `permissions:
  - role: guest
    resource: grids
    view: true
  - role: grid_manager
    resource: volunteers
    view: true
    create: true
    edit: true
`

func TestLoadSeed(t *testing.T) {
	rules, err := LoadSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, Rule{Role: role.RoleGuest, ResourceKey: "grids", CanView: true}, rules[0])
	assert.Equal(t, role.RoleGridManager, rules[1].Role)
	assert.True(t, rules[1].CanEdit)
	assert.False(t, rules[1].CanManage)
}

func TestLoadSeedErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"unknown role", "permissions:\n  - role: owner\n    resource: grids\n"},
		{"unknown capability", "permissions:\n  - role: user\n    resource: grids\n    approve: true\n"},
		{"missing resource", "permissions:\n  - role: user\n    view: true\n"},
		{"unknown resource", "permissions:\n  - role: user\n    resource: gridz\n    view: true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadSeed(strings.NewReader("permissions:\n  - role: user\n"))
	assert.True(t, errors.Is(err, ErrInvalidRule))
}

func TestMarshalSeedRoundTrip(t *testing.T) {
	rules, err := LoadSeed(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	data, err := MarshalSeed(rules)
	require.NoError(t, err)
	assert.Contains(t, string(data), "role: grid_manager")

	path := filepath.Join(t.TempDir(), "permissions.yml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	again, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Equal(t, rules, again)
}
