package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// RoleChangeRequest is the body of PATCH /admin/users/{id}/role
type RoleChangeRequest struct {
	Role string `json:"role"`
}

// RegisterAdminUsersEndpoints registers the user management endpoints
func RegisterAdminUsersEndpoints(s *server.Server) {
	perms := s.Permissions

	s.Router.HandleFunc("/admin/users",
		requirePermission(perms, permission.ResourceUsers, role.ActionView,
			handleListUsers(s)),
	).Methods("GET")

	s.Router.HandleFunc("/admin/users/{id}/role",
		requireAuthentication(requirePermission(perms, permission.ResourceUsers, role.ActionManage,
			handleChangeRole(s))),
	).Methods("PATCH")
}

func handleListUsers(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("admin")

	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := pagination(r, s.Config)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		users, err := s.Users.ListUsers(r.Context(), limit, offset)
		if err != nil {
			respondWithServerError(w, logger, "failed to list users", err)
			return
		}
		if users == nil {
			users = []model.User{}
		}
		respondWithETag(w, r, users)
	}
}

// handleChangeRole changes a stored role. The acting role must outrank both
// the current and the requested role, so only super_admin touches
// super_admin accounts.
func handleChangeRole(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("admin")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := identity.FromContext(ctx)
		targetID := mux.Vars(r)["id"]

		var req RoleChangeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		requested, err := role.RoleString(req.Role)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid role: "+req.Role)
			return
		}

		target, err := s.Users.FetchUser(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithServerError(w, logger, "failed to fetch user", err)
			return
		}

		event := audit.RoleChangeEvent{
			Subject:      subjectOf(caller),
			TargetUserID: target.ID,
			FromRole:     target.Role.String(),
			ToRole:       requested.String(),
		}

		if !caller.ActingRole.Outranks(requested) || !caller.ActingRole.Outranks(target.Role) {
			event.ErrorMessage = "insufficient privilege"
			s.Auditor.Log(ctx, event)
			logger.Warn("role change denied",
				zap.String("user_id", caller.UserID),
				zap.String("target", target.ID),
				zap.Stringer("requested", requested))
			respondWithError(w, http.StatusForbidden, "insufficient privilege")
			return
		}

		if err := s.Users.UpdateUserRole(ctx, target.ID, requested); err != nil {
			event.ErrorMessage = err.Error()
			s.Auditor.Log(ctx, event)
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			respondWithServerError(w, logger, "failed to update role", err)
			return
		}

		event.Success = true
		s.Auditor.Log(ctx, event)

		target.Role = requested
		respondWithJSON(w, http.StatusOK, target)
	}
}
