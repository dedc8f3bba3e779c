package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/privacy"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// RegistrationRequest is the body of POST /grids/{id}/volunteers
type RegistrationRequest struct {
	VolunteerName    string  `json:"volunteer_name"`
	VolunteerPhone   *string `json:"volunteer_phone"`
	VolunteerEmail   *string `json:"volunteer_email"`
	VolunteerContact *string `json:"volunteer_contact"`
	AvailableTime    string  `json:"available_time"`
	Skills           string  `json:"skills"`
	Equipment        string  `json:"equipment"`
	Notes            string  `json:"notes"`
}

// RegisterVolunteersEndpoints registers the volunteer registration endpoints
func RegisterVolunteersEndpoints(s *server.Server) {
	perms := s.Permissions
	logger := s.Logger.Named("volunteers")

	// GET /volunteers - All registrations, optionally ?grid_id=
	s.Router.HandleFunc("/volunteers",
		requirePermission(perms, permission.ResourceVolunteers, role.ActionView,
			handleListRegistrations(s, logger, false)),
	).Methods("GET")

	// GET /grids/{id}/volunteers - Registrations of one grid
	s.Router.HandleFunc("/grids/{id}/volunteers",
		requirePermission(perms, permission.ResourceVolunteers, role.ActionView,
			handleListRegistrations(s, logger, true)),
	).Methods("GET")

	// POST /grids/{id}/volunteers - Register the caller for a grid
	s.Router.HandleFunc("/grids/{id}/volunteers",
		requireAuthentication(requirePermission(perms, permission.ResourceVolunteers, role.ActionCreate,
			handleCreateRegistration(s.Volunteers, logger))),
	).Methods("POST")
}

func handleListRegistrations(s *server.Server, logger *zap.Logger, scoped bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := pagination(r, s.Config)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		opts := store.ListOptions{GridID: r.URL.Query().Get("grid_id"), Limit: limit, Offset: offset}
		if scoped {
			opts.GridID = mux.Vars(r)["id"]
			if !gridExists(w, r, s.Grids, logger, opts.GridID) {
				return
			}
		}

		regs, err := s.Volunteers.ListRegistrations(r.Context(), opts)
		if err != nil {
			respondWithServerError(w, logger, "failed to list registrations", err)
			return
		}

		viewer := identity.FromContext(r.Context()).Viewer()
		filtered := privacy.FilterAll(regs, viewer, model.VolunteerRegistration.GridOwner)
		logger.Debug("listed registrations", zap.Int("count", len(filtered)), zap.String("grid_id", opts.GridID))
		respondWithETag(w, r, filtered)
	}
}

func handleCreateRegistration(volunteers store.VolunteersStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegistrationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.VolunteerName) == "" {
			respondWithError(w, http.StatusBadRequest, "volunteer_name is required")
			return
		}

		reg := &model.VolunteerRegistration{
			GridID:           mux.Vars(r)["id"],
			CreatedByID:      identity.FromContext(r.Context()).UserID,
			VolunteerName:    strings.TrimSpace(req.VolunteerName),
			VolunteerPhone:   optionalString(req.VolunteerPhone),
			VolunteerEmail:   optionalString(req.VolunteerEmail),
			VolunteerContact: optionalString(req.VolunteerContact),
			AvailableTime:    req.AvailableTime,
			Skills:           req.Skills,
			Equipment:        req.Equipment,
			Status:           model.RegistrationPending,
			Notes:            req.Notes,
		}
		if err := volunteers.CreateRegistration(r.Context(), reg); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "grid not found")
				return
			}
			respondWithServerError(w, logger, "failed to create registration", err)
			return
		}

		respondWithJSON(w, http.StatusCreated, reg)
	}
}

// gridExists writes a 404 or 500 and returns false when the grid can't be
// fetched.
func gridExists(w http.ResponseWriter, r *http.Request, grids store.GridsStore, logger *zap.Logger, id string) bool {
	if _, err := grids.FetchGrid(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "grid not found")
			return false
		}
		respondWithServerError(w, logger, "failed to fetch grid", err)
		return false
	}
	return true
}
