package endpoints

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a new session token
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// RegisterAuthenticateEndpoints registers the login endpoint
func RegisterAuthenticateEndpoints(s *server.Server) {
	s.Router.HandleFunc("/auth/login", handleLogin(s)).Methods("POST")
}

func handleLogin(s *server.Server) http.HandlerFunc {
	logger := s.Logger.Named("login")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := identity.FromContext(ctx)

		passwords, ok := s.Authenticators.Lookup(authn.Name)
		if !ok {
			respondWithError(w, http.StatusNotImplemented, "authenticator is not enabled")
			return
		}

		var req LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		event := audit.AuthenticateEvent{
			Subject:           subjectOf(caller),
			Login:             authn.NormalizeEmail(req.Email),
			AuthenticatorName: authn.Name,
		}

		user, err := passwords.Authenticate(ctx, authenticator.AuthenticatorInput{
			Login:       req.Email,
			Credentials: []byte(req.Password),
			ClientIP:    event.ClientIP,
		})
		if err != nil {
			event.ErrorMessage = err.Error()
			s.Auditor.Log(ctx, event)
			if errors.Is(err, authenticator.ErrInvalidCredentials) {
				respondWithError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			respondWithServerError(w, logger, "login failed", err)
			return
		}

		token, expiresAt, err := s.Sessions.Issue(user)
		if err != nil {
			respondWithServerError(w, logger, "failed to issue session token", err)
			return
		}

		event.UserID = user.ID
		event.Role = user.Role.String()
		event.Success = true
		s.Auditor.Log(ctx, event)
		logger.Debug("login succeeded", zap.String("user_id", user.ID))

		w.Header().Set("Cache-Control", "no-store")
		respondWithJSON(w, http.StatusOK, LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
		})
	}
}
