package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

const testSecret = "test-secret-test-secret-test-secret"

// testEnv is a fully wired server over mock stores.
type testEnv struct {
	srv           *server.Server
	users         *MockUsersStore
	grids         *MockGridsStore
	volunteers    *MockVolunteersStore
	donations     *MockDonationsStore
	announcements *MockAnnouncementsStore
	health        *MockHealthStore
	auditLogs     *MockAuditLogsStore
	permissions   *memoryPermissions
	auditor       *recordingAuditor
}

func rule(r role.Role, key string, actions ...role.Action) permission.Rule {
	pr := permission.Rule{Role: r, ResourceKey: key}
	for _, a := range actions {
		switch a {
		case role.ActionView:
			pr.CanView = true
		case role.ActionCreate:
			pr.CanCreate = true
		case role.ActionEdit:
			pr.CanEdit = true
		case role.ActionDelete:
			pr.CanDelete = true
		case role.ActionManage:
			pr.CanManage = true
		}
	}
	return pr
}

// defaultRules mirrors the rows seeded by the migrations.
func defaultRules() []permission.Rule {
	all := role.ActionValues()
	view, create := role.ActionView, role.ActionCreate

	var rules []permission.Rule
	for _, key := range []string{permission.ResourceGrids, permission.ResourceVolunteers, permission.ResourceSupplies} {
		rules = append(rules,
			rule(role.RoleGuest, key, view),
			rule(role.RoleUser, key, view, create),
			rule(role.RoleGridManager, key, view, create, role.ActionEdit),
			rule(role.RoleAdmin, key, all...),
			rule(role.RoleSuperAdmin, key, all...),
		)
	}
	rules = append(rules,
		rule(role.RoleGuest, permission.ResourceAnnouncements, view),
		rule(role.RoleUser, permission.ResourceAnnouncements, view),
		rule(role.RoleGridManager, permission.ResourceAnnouncements, view),
		rule(role.RoleAdmin, permission.ResourceAnnouncements, all...),
		rule(role.RoleSuperAdmin, permission.ResourceAnnouncements, all...),
		rule(role.RoleAdmin, permission.ResourceUsers, view, role.ActionEdit, role.ActionManage),
		rule(role.RoleSuperAdmin, permission.ResourceUsers, all...),
		rule(role.RoleAdmin, permission.ResourceRolePermissions, view),
		rule(role.RoleSuperAdmin, permission.ResourceRolePermissions, all...),
		rule(role.RoleAdmin, permission.ResourceAuditLogs, view),
		rule(role.RoleSuperAdmin, permission.ResourceAuditLogs, view, role.ActionManage),
	)
	return rules
}

func newTestEnv(t *testing.T, rules []permission.Rule, configure ...func(*config.Config)) *testEnv {
	t.Helper()

	env := &testEnv{
		users:         &MockUsersStore{},
		grids:         &MockGridsStore{},
		volunteers:    &MockVolunteersStore{},
		donations:     &MockDonationsStore{},
		announcements: &MockAnnouncementsStore{},
		health:        &MockHealthStore{},
		auditLogs:     &MockAuditLogsStore{},
		permissions:   newMemoryPermissions(rules),
		auditor:       &recordingAuditor{},
	}

	cfg := config.Default()
	cfg.JWTSecret = testSecret
	cfg.APIListLimitMax = 50
	for _, fn := range configure {
		fn(cfg)
	}
	require.NoError(t, cfg.Validate())

	srv, err := server.NewServer(cfg, server.Stores{
		Users:         env.users,
		Grids:         env.grids,
		Volunteers:    env.volunteers,
		Donations:     env.donations,
		Announcements: env.announcements,
		Permissions:   env.permissions,
		Health:        env.health,
		AuditLogs:     env.auditLogs,
	}, nil, server.WithAuditor(env.auditor), server.WithAccessLog(io.Discard))
	require.NoError(t, err)

	RegisterAll(srv)
	env.srv = srv

	t.Cleanup(func() {
		env.users.AssertExpectations(t)
		env.grids.AssertExpectations(t)
		env.volunteers.AssertExpectations(t)
		env.donations.AssertExpectations(t)
		env.announcements.AssertExpectations(t)
		env.health.AssertExpectations(t)
		env.auditLogs.AssertExpectations(t)
	})
	return env
}

// session registers user with the users mock and returns a bearer token.
func (e *testEnv) session(t *testing.T, user *model.User) string {
	t.Helper()
	e.users.On("FetchUser", mock.Anything, user.ID).Return(user, nil)
	token, _, err := e.srv.Sessions.Issue(user)
	require.NoError(t, err)
	return token
}

type requestOption func(*http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withHeader(name, value string) requestOption {
	return func(r *http.Request) {
		r.Header.Set(name, value)
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}

func strPtr(s string) *string {
	return &s
}

// Fixtures are functions so that handlers mutating a user never leak
// between tests.
func alice() *model.User {
	return &model.User{ID: "u1", Email: "alice@example.com", Role: role.RoleUser}
}

func bob() *model.User {
	return &model.User{ID: "u2", Email: "bob@example.com", Role: role.RoleGridManager}
}

func carol() *model.User {
	return &model.User{ID: "u3", Email: "carol@example.com", Role: role.RoleUser}
}

func admin() *model.User {
	return &model.User{ID: "a1", Email: "admin@example.com", Role: role.RoleAdmin}
}

func superAdmin() *model.User {
	return &model.User{ID: "s1", Email: "root@example.com", Role: role.RoleSuperAdmin}
}
