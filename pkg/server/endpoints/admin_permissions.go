package endpoints

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

// PermissionsRequest is the body of PUT /admin/permissions. Rules not
// listed are left as they are.
type PermissionsRequest struct {
	Permissions []permission.Rule `json:"permissions"`
}

// PermissionsResponse lists permission rules
type PermissionsResponse struct {
	Permissions []permission.Rule `json:"permissions"`
}

// RegisterAdminPermissionsEndpoints registers the permission table endpoints
func RegisterAdminPermissionsEndpoints(s *server.Server) {
	perms := s.Permissions

	s.Router.HandleFunc("/admin/permissions",
		requirePermission(perms, permission.ResourceRolePermissions, role.ActionView,
			handleListPermissions(s)),
	).Methods("GET")

	s.Router.HandleFunc("/admin/permissions",
		requireAuthentication(requirePermission(perms, permission.ResourceRolePermissions, role.ActionManage,
			handleUpdatePermissions(s))),
	).Methods("PUT")
}

func handleListPermissions(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("admin")

	return func(w http.ResponseWriter, r *http.Request) {
		var (
			rules []permission.Rule
			err   error
		)
		if name := r.URL.Query().Get("role"); name != "" {
			filter, perr := role.RoleString(name)
			if perr != nil {
				respondWithError(w, http.StatusBadRequest, "invalid role: "+name)
				return
			}
			rules, err = s.Permissions.RulesFor(r.Context(), filter)
		} else {
			rules, err = s.Permissions.Rules(r.Context())
		}
		if err != nil {
			respondWithServerError(w, logger, "failed to load permissions", err)
			return
		}
		respondWithETag(w, r, PermissionsResponse{Permissions: rules})
	}
}

func handleUpdatePermissions(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("admin")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := identity.FromContext(ctx)

		var req PermissionsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(req.Permissions) == 0 {
			respondWithError(w, http.StatusBadRequest, "no permission rules given")
			return
		}

		event := audit.PermissionUpdateEvent{
			Subject: subjectOf(caller),
			Source:  audit.SourceAPI,
			Rules:   ruleNames(req.Permissions),
		}

		if err := s.Permissions.Update(ctx, req.Permissions); err != nil {
			event.ErrorMessage = err.Error()
			s.Auditor.Log(ctx, event)
			if errors.Is(err, permission.ErrInvalidRule) {
				respondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondWithServerError(w, logger, "failed to update permissions", err)
			return
		}

		event.Success = true
		s.Auditor.Log(ctx, event)
		logger.Info("permissions updated",
			zap.String("user_id", caller.UserID),
			zap.Int("rules", len(req.Permissions)))

		rules, err := s.Permissions.Rules(ctx)
		if err != nil {
			respondWithServerError(w, logger, "failed to load permissions", err)
			return
		}
		respondWithJSON(w, http.StatusOK, PermissionsResponse{Permissions: rules})
	}
}

func ruleNames(rules []permission.Rule) []string {
	names := make([]string, len(rules))
	for i, rule := range rules {
		names[i] = rule.String()
	}
	return names
}
