package endpoints

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/middleware"
)

func TestMe(t *testing.T) {
	t.Run("guest", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())

		rec := env.do(t, "GET", "/me", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"role":"guest","acting_role":"guest","authenticated":false}`, rec.Body.String())
	})

	t.Run("admin viewing as grid manager", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, admin())

		rec := env.do(t, "GET", "/me", nil, withToken(token), withHeader(middleware.ViewAsHeader, "grid_manager"))
		require.Equal(t, http.StatusOK, rec.Code)

		var got MeResponse
		decodeBody(t, rec, &got)
		assert.Equal(t, "a1", got.UserID)
		assert.Equal(t, role.RoleAdmin, got.Role)
		assert.Equal(t, role.RoleGridManager, got.ActingRole)
		assert.Equal(t, "grid_manager", got.ViewAs)
		assert.True(t, got.Authenticated)
	})

	t.Run("unknown override", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())
		token := env.session(t, admin())

		rec := env.do(t, "GET", "/me", nil, withToken(token), withHeader(middleware.ViewAsHeader, "emperor"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		env := newTestEnv(t, defaultRules())

		rec := env.do(t, "GET", "/me", nil, withToken("not-a-token"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMyPermissions(t *testing.T) {
	env := newTestEnv(t, defaultRules())
	token := env.session(t, admin())

	rec := env.do(t, "GET", "/me/permissions", nil, withToken(token), withHeader(middleware.ViewAsHeader, "guest"))
	require.Equal(t, http.StatusOK, rec.Code)

	var got MyPermissionsResponse
	decodeBody(t, rec, &got)
	assert.Equal(t, role.RoleGuest, got.Role)
	require.Len(t, got.Permissions, 4)
	for _, r := range got.Permissions {
		assert.Equal(t, role.RoleGuest, r.Role)
	}
	assert.True(t, permission.HasPermission(got.Permissions, permission.ResourceGrids, role.ActionView))
	assert.False(t, permission.HasPermission(got.Permissions, permission.ResourceGrids, role.ActionCreate))
	assert.False(t, permission.HasPermission(got.Permissions, permission.ResourceUsers, role.ActionView))
}
