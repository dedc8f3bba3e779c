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

// DonationRequest is the body of POST /grids/{id}/donations
type DonationRequest struct {
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Unit           string  `json:"unit"`
	DonorName      *string `json:"donor_name"`
	DonorPhone     *string `json:"donor_phone"`
	DonorEmail     *string `json:"donor_email"`
	DonorContact   *string `json:"donor_contact"`
	DeliveryMethod string  `json:"delivery_method"`
	Notes          string  `json:"notes"`
}

func (d DonationRequest) validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("name is required")
	}
	if d.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// RegisterDonationsEndpoints registers the supply donation endpoints.
// Donations are gated by the "supplies" resource key.
func RegisterDonationsEndpoints(s *server.Server) {
	perms := s.Permissions
	logger := s.Logger.Named("donations")

	s.Router.HandleFunc("/donations",
		requirePermission(perms, permission.ResourceSupplies, role.ActionView,
			handleListDonations(s, logger, false)),
	).Methods("GET")

	s.Router.HandleFunc("/grids/{id}/donations",
		requirePermission(perms, permission.ResourceSupplies, role.ActionView,
			handleListDonations(s, logger, true)),
	).Methods("GET")

	s.Router.HandleFunc("/grids/{id}/donations",
		requireAuthentication(requirePermission(perms, permission.ResourceSupplies, role.ActionCreate,
			handleCreateDonation(s.Donations, logger))),
	).Methods("POST")
}

func handleListDonations(s *server.Server, logger *zap.Logger, scoped bool) http.HandlerFunc {
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

		donations, err := s.Donations.ListDonations(r.Context(), opts)
		if err != nil {
			respondWithServerError(w, logger, "failed to list donations", err)
			return
		}

		viewer := identity.FromContext(r.Context()).Viewer()
		filtered := privacy.FilterAll(donations, viewer, model.SupplyDonation.GridOwner)
		logger.Debug("listed donations", zap.Int("count", len(filtered)), zap.String("grid_id", opts.GridID))
		respondWithETag(w, r, filtered)
	}
}

func handleCreateDonation(donations store.DonationsStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DonationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.validate(); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		donation := &model.SupplyDonation{
			GridID:         mux.Vars(r)["id"],
			CreatedByID:    identity.FromContext(r.Context()).UserID,
			Name:           strings.TrimSpace(req.Name),
			Quantity:       req.Quantity,
			Unit:           req.Unit,
			DonorName:      optionalString(req.DonorName),
			DonorPhone:     optionalString(req.DonorPhone),
			DonorEmail:     optionalString(req.DonorEmail),
			DonorContact:   optionalString(req.DonorContact),
			DeliveryMethod: req.DeliveryMethod,
			Status:         model.DonationPledged,
			Notes:          req.Notes,
		}
		if err := donations.CreateDonation(r.Context(), donation); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				respondWithError(w, http.StatusNotFound, "grid not found")
				return
			}
			respondWithServerError(w, logger, "failed to create donation", err)
			return
		}

		respondWithJSON(w, http.StatusCreated, donation)
	}
}
