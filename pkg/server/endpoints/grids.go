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

// GridRequest is the body of POST /grids
type GridRequest struct {
	Code            string  `json:"code"`
	GridType        string  `json:"grid_type"`
	CenterLat       float64 `json:"center_lat"`
	CenterLng       float64 `json:"center_lng"`
	VolunteerNeeded int     `json:"volunteer_needed"`
	MeetingPoint    string  `json:"meeting_point"`
	Description     string  `json:"description"`
	ContactInfo     *string `json:"contact_info"`
}

func (g GridRequest) validate() error {
	if strings.TrimSpace(g.Code) == "" {
		return errors.New("code is required")
	}
	if g.GridType != "" && !isOneOf(g.GridType, model.ValidGridTypes) {
		return errors.New("invalid grid_type: " + g.GridType)
	}
	if g.VolunteerNeeded < 0 {
		return errors.New("volunteer_needed must not be negative")
	}
	if g.CenterLat < -90 || g.CenterLat > 90 || g.CenterLng < -180 || g.CenterLng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

// RegisterGridsEndpoints registers the grid endpoints
func RegisterGridsEndpoints(s *server.Server) {
	perms := s.Permissions
	logger := s.Logger.Named("grids")

	// GET /grids - List grids, contact details filtered per viewer
	s.Router.HandleFunc("/grids",
		requirePermission(perms, permission.ResourceGrids, role.ActionView,
			handleListGrids(s, logger)),
	).Methods("GET")

	// POST /grids - Create a grid owned by the caller
	s.Router.HandleFunc("/grids",
		requireAuthentication(requirePermission(perms, permission.ResourceGrids, role.ActionCreate,
			handleCreateGrid(s.Grids, logger))),
	).Methods("POST")

	// GET /grids/{id} - Fetch one grid
	s.Router.HandleFunc("/grids/{id}",
		requirePermission(perms, permission.ResourceGrids, role.ActionView,
			handleGetGrid(s.Grids, logger)),
	).Methods("GET")
}

func handleListGrids(s *server.Server, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := pagination(r, s.Config)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		query := r.URL.Query()
		filter := store.GridFilter{
			GridType: query.Get("grid_type"),
			Status:   query.Get("status"),
			Limit:    limit,
			Offset:   offset,
		}

		grids, err := s.Grids.ListGrids(r.Context(), filter)
		if err != nil {
			respondWithServerError(w, logger, "failed to list grids", err)
			return
		}

		viewer := identity.FromContext(r.Context()).Viewer()
		filtered := privacy.FilterAll(grids, viewer, func(g model.Grid) string { return g.CreatedByID })
		logger.Debug("listed grids", zap.Int("count", len(filtered)), zap.String("viewer", viewer.ID))
		respondWithETag(w, r, filtered)
	}
}

func handleGetGrid(grids store.GridsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grid, err := grids.FetchGrid(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "grid not found")
				return
			}
			respondWithServerError(w, logger, "failed to fetch grid", err)
			return
		}

		viewer := identity.FromContext(r.Context()).Viewer()
		respondWithETag(w, r, privacy.FilterContactFields(*grid, viewer, grid.CreatedByID))
	}
}

func handleCreateGrid(grids store.GridsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GridRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		gridType := req.GridType
		if gridType == "" {
			gridType = model.GridTypeManpower
		}

		grid := &model.Grid{
			Code:            strings.TrimSpace(req.Code),
			GridType:        gridType,
			Status:          model.GridStatusOpen,
			CenterLat:       req.CenterLat,
			CenterLng:       req.CenterLng,
			VolunteerNeeded: req.VolunteerNeeded,
			MeetingPoint:    req.MeetingPoint,
			Description:     req.Description,
			ContactInfo:     optionalString(req.ContactInfo),
			CreatedByID:     identity.FromContext(r.Context()).UserID,
		}
		if err := grids.CreateGrid(r.Context(), grid); err != nil {
			respondWithServerError(w, logger, "failed to create grid", err)
			return
		}

		respondWithJSON(w, http.StatusCreated, grid)
	}
}

func isOneOf(s string, values []string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
