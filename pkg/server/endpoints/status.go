package endpoints

import (
	"net/http"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
)

// Version is reported by the status endpoint. It is set at build time.
var Version = "0.1.0"

// StatusResponse represents the response from /
type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// AuthenticatorsResponse represents the response from /authenticators
type AuthenticatorsResponse struct {
	Installed []string `json:"installed"`
	Enabled   []string `json:"enabled"`
}

// RegisterStatusEndpoints registers the status and info endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Status (no auth required)
	s.Router.HandleFunc("/", handleStatus(s.Health)).Methods("GET")

	// GET /authenticators - List authenticators (no auth required)
	s.Router.HandleFunc("/authenticators", handleAuthenticators(s.Authenticators)).Methods("GET")
}

func handleStatus(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status:   "error",
				Version:  Version,
				Database: "unreachable",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:   "ok",
			Version:  Version,
			Database: "ok",
		})
	}
}

func handleAuthenticators(registry *authenticator.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, AuthenticatorsResponse{
			Installed: registry.Installed(),
			Enabled:   registry.Enabled(),
		})
	}
}
