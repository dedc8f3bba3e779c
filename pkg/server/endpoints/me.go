package endpoints

import (
	"net/http"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

// MeResponse describes the caller of a request
type MeResponse struct {
	UserID        string    `json:"user_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	Role          role.Role `json:"role"`
	ActingRole    role.Role `json:"acting_role"`
	ViewAs        string    `json:"view_as,omitempty"`
	Authenticated bool      `json:"authenticated"`
}

// MyPermissionsResponse is the capability set of the acting role. Clients
// use it to hide controls; the server still checks every request.
type MyPermissionsResponse struct {
	Role        role.Role         `json:"role"`
	Permissions []permission.Rule `json:"permissions"`
}

// RegisterMeEndpoints registers the caller introspection endpoints
func RegisterMeEndpoints(s *server.Server) {
	s.Router.HandleFunc("/me", handleMe()).Methods("GET")
	s.Router.HandleFunc("/me/permissions", handleMyPermissions(s)).Methods("GET")
}

func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identity.FromContext(r.Context())
		respondWithJSON(w, http.StatusOK, MeResponse{
			UserID:        id.UserID,
			Email:         id.Email,
			Role:          id.Role,
			ActingRole:    id.ActingRole,
			ViewAs:        id.Override,
			Authenticated: id.Authenticated(),
		})
	}
}

func handleMyPermissions(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("me")

	return func(w http.ResponseWriter, r *http.Request) {
		acting := identity.FromContext(r.Context()).ActingRole

		rules, err := s.Permissions.RulesFor(r.Context(), acting)
		if err != nil {
			respondWithServerError(w, logger, "failed to load permissions", err)
			return
		}
		respondWithETag(w, r, MyPermissionsResponse{Role: acting, Permissions: rules})
	}
}
