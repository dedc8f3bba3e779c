package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

type fakeSessions map[string]*model.User

func (f fakeSessions) Session(ctx context.Context, token string) (*model.User, *authn_jwt.Claims, error) {
	if token == "broken-db" {
		return nil, nil, errors.New("connection refused")
	}
	user, ok := f[token]
	if !ok {
		return nil, nil, authn_jwt.ErrInvalidToken
	}
	iat := time.Unix(1760000000, 0)
	return user, &authn_jwt.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(iat.Add(time.Hour)),
	}}, nil
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Log(ctx context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

var sessions = fakeSessions{
	"user-token":    {ID: "u1", Role: role.RoleUser},
	"admin-token":   {ID: "a1", Role: role.RoleAdmin},
	"corrupt-token": {ID: "x1", Role: role.Role(99)},
}

// serve runs a request through the middleware and returns the identity the
// next handler saw, or nil if it was not called.
func serve(t *testing.T, auditor audit.Auditor, headers map[string]string) (*httptest.ResponseRecorder, *identity.Identity) {
	t.Helper()

	var seen *identity.Identity
	handler := NewAuthenticator(sessions, auditor, nil, nil).Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = identity.FromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest("GET", "/grids", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestMiddleware_Guest(t *testing.T) {
	rec, id := serve(t, nil, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, id)
	assert.False(t, id.Authenticated())
	assert.Equal(t, role.RoleGuest, id.ActingRole)
	assert.Equal(t, "203.0.113.7", id.RemoteIP.String())
	assert.Equal(t, []string{"Authorization", ViewAsHeader}, rec.Header().Values("Vary"))
}

func TestMiddleware_User(t *testing.T) {
	rec, id := serve(t, nil, map[string]string{"Authorization": "Bearer user-token"})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, id)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, role.RoleUser, id.ActingRole)
	assert.Equal(t, time.Unix(1760000000, 0).Add(time.Hour).Unix(), id.ExpiresAt.Unix())
}

func TestMiddleware_AdminViewAs(t *testing.T) {
	rec, id := serve(t, nil, map[string]string{
		"Authorization": "Bearer admin-token",
		ViewAsHeader:    "guest",
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, id)
	assert.Equal(t, role.RoleAdmin, id.Role)
	assert.Equal(t, role.RoleGuest, id.ActingRole)
	assert.Equal(t, "guest", id.Override)
	assert.Empty(t, id.Viewer().ID)
}

func TestMiddleware_RejectedOverride(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
	}{
		{"user asks for admin", map[string]string{"Authorization": "Bearer user-token", ViewAsHeader: "admin"}},
		{"guest asks for admin", map[string]string{ViewAsHeader: "admin"}},
		{"admin asks for unknown role", map[string]string{"Authorization": "Bearer admin-token", ViewAsHeader: "root"}},
		{"admin asks for super_admin", map[string]string{"Authorization": "Bearer admin-token", ViewAsHeader: "super_admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor := &recordingAuditor{}
			rec, id := serve(t, auditor, tt.headers)

			assert.Nil(t, id, "handler should not be called")
			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Equal(t, "role override not permitted", errorBody(t, rec))

			require.Len(t, auditor.events, 1)
			event, ok := auditor.events[0].(audit.ViewAsDeniedEvent)
			require.True(t, ok)
			assert.Equal(t, tt.headers[ViewAsHeader], event.RequestedRole)
			assert.Equal(t, "203.0.113.7", event.ClientIP)
		})
	}
}

func TestMiddleware_CorruptSession(t *testing.T) {
	auditor := &recordingAuditor{}
	rec, id := serve(t, auditor, map[string]string{"Authorization": "Bearer corrupt-token"})

	assert.Nil(t, id)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication required", errorBody(t, rec))
	require.Len(t, auditor.events, 1)
	assert.IsType(t, audit.AuthenticateEvent{}, auditor.events[0])
}

func TestMiddleware_InvalidToken(t *testing.T) {
	auditor := &recordingAuditor{}
	rec, id := serve(t, auditor, map[string]string{"Authorization": "Bearer forged"})

	assert.Nil(t, id)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid session token", errorBody(t, rec))
	require.Len(t, auditor.events, 1)
}

func TestMiddleware_MalformedAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"token scheme", `Token token="xyz"`},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"random string", "something random"},
		{"bearer without token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, id := serve(t, nil, map[string]string{"Authorization": tt.header})

			assert.Nil(t, id)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "malformed authorization header", errorBody(t, rec))
		})
	}
}

func TestMiddleware_SessionStoreError(t *testing.T) {
	rec, id := serve(t, nil, map[string]string{"Authorization": "Bearer broken-db"})

	assert.Nil(t, id)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRequireAuthentication(t *testing.T) {
	handler := RequireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/grids", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	id := &identity.Identity{UserID: "u1", Role: role.RoleUser, ActingRole: role.RoleUser}
	req = req.WithContext(identity.Set(req.Context(), id))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"direct", "203.0.113.7:1234", "", "203.0.113.7"},
		{"untrusted peer ignores header", "203.0.113.7:1234", "1.2.3.4", "203.0.113.7"},
		{"trusted peer", "10.1.2.3:1234", "198.51.100.2", "198.51.100.2"},
		{"rightmost untrusted hop", "10.1.2.3:1234", "1.1.1.1, 198.51.100.2, 192.168.1.1", "198.51.100.2"},
		{"all trusted", "10.1.2.3:1234", "10.9.9.9", "10.9.9.9"},
		{"no port", "203.0.113.9", "", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, ClientIP(req, trusted).String())
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{"", " 127.0.0.1 ", "::1", "172.16.0.0/12"})
	require.NoError(t, err)
	require.Len(t, nets, 3)
	assert.True(t, nets[0].Contains(net.ParseIP("127.0.0.1")))
	assert.True(t, nets[1].Contains(net.ParseIP("::1")))

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}
