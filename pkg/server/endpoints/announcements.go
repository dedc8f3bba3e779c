package endpoints

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// AnnouncementRequest is the body of POST /announcements
type AnnouncementRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Pinned bool   `json:"pinned"`
}

// RegisterAnnouncementsEndpoints registers the announcement endpoints
func RegisterAnnouncementsEndpoints(s *server.Server) {
	perms := s.Permissions
	logger := s.Logger.Named("announcements")

	s.Router.HandleFunc("/announcements",
		requirePermission(perms, permission.ResourceAnnouncements, role.ActionView,
			handleListAnnouncements(s, logger)),
	).Methods("GET")

	s.Router.HandleFunc("/announcements",
		requireAuthentication(requirePermission(perms, permission.ResourceAnnouncements, role.ActionCreate,
			handleCreateAnnouncement(s.Announcements, logger))),
	).Methods("POST")
}

// Announcements carry no contact details, so they are served unfiltered.
func handleListAnnouncements(s *server.Server, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := pagination(r, s.Config)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		announcements, err := s.Announcements.ListAnnouncements(r.Context(), limit, offset)
		if err != nil {
			respondWithServerError(w, logger, "failed to list announcements", err)
			return
		}
		if announcements == nil {
			announcements = []model.Announcement{}
		}
		respondWithETag(w, r, announcements)
	}
}

func handleCreateAnnouncement(announcements store.AnnouncementsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnnouncementRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Title) == "" {
			respondWithError(w, http.StatusBadRequest, "title is required")
			return
		}

		a := &model.Announcement{
			Title:       strings.TrimSpace(req.Title),
			Body:        req.Body,
			Pinned:      req.Pinned,
			CreatedByID: identity.FromContext(r.Context()).UserID,
		}
		if err := announcements.CreateAnnouncement(r.Context(), a); err != nil {
			respondWithServerError(w, logger, "failed to create announcement", err)
			return
		}
		respondWithJSON(w, http.StatusCreated, a)
	}
}
