package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
)

// ViewAsHeader names the role an admin wants to act as.
const ViewAsHeader = "X-View-As-Role"

var bearerRegex = regexp.MustCompile(`^Bearer\s+(\S+)$`)

// Sessions verifies session tokens.
type Sessions interface {
	Session(ctx context.Context, token string) (*model.User, *authn_jwt.Claims, error)
}

// Authenticator is middleware that turns the Authorization and
// X-View-As-Role headers into an identity.Identity on the request context.
// Requests without an Authorization header continue as guest.
type Authenticator struct {
	sessions Sessions
	auditor  audit.Auditor
	logger   *zap.Logger
	trusted  []*net.IPNet
}

// NewAuthenticator creates the authentication middleware. trusted lists the
// proxies whose X-Forwarded-For header is believed.
func NewAuthenticator(sessions Sessions, auditor audit.Auditor, logger *zap.Logger, trusted []*net.IPNet) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if auditor == nil {
		auditor = audit.Nop()
	}
	return &Authenticator{
		sessions: sessions,
		auditor:  auditor,
		logger:   logger,
		trusted:  trusted,
	}
}

// Middleware returns an HTTP middleware that resolves the caller identity
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Every response below depends on who is asking.
		w.Header().Add("Vary", "Authorization")
		w.Header().Add("Vary", ViewAsHeader)

		ctx := r.Context()
		clientIP := ClientIP(r, a.trusted)

		var id *identity.Identity
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			matches := bearerRegex.FindStringSubmatch(authHeader)
			if len(matches) != 2 {
				writeError(w, http.StatusUnauthorized, "malformed authorization header")
				return
			}

			user, claims, err := a.sessions.Session(ctx, matches[1])
			if err != nil {
				if errors.Is(err, authn_jwt.ErrInvalidToken) {
					a.logger.Warn("rejected session token",
						zap.String("client_ip", ipString(clientIP)),
						zap.Error(err))
					a.auditor.Log(ctx, audit.AuthenticateEvent{
						Subject:           audit.Subject{ClientIP: ipString(clientIP)},
						AuthenticatorName: authn_jwt.Name,
						ErrorMessage:      err.Error(),
					})
					writeError(w, http.StatusUnauthorized, "invalid session token")
					return
				}
				a.logger.Error("failed to load session", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			id = identity.FromUser(user)
			if claims.IssuedAt != nil && claims.ExpiresAt != nil {
				id.WithSession(claims.IssuedAt.Time, claims.ExpiresAt.Time)
			}
		}

		override := strings.TrimSpace(r.Header.Get(ViewAsHeader))
		acting, err := identity.ResolveRole(id, override)
		switch {
		case errors.Is(err, identity.ErrAuthentication):
			a.logger.Warn("corrupt session", zap.String("user_id", id.UserID), zap.Error(err))
			a.auditor.Log(ctx, audit.AuthenticateEvent{
				Subject:           audit.Subject{UserID: id.UserID, ClientIP: ipString(clientIP)},
				AuthenticatorName: authn_jwt.Name,
				ErrorMessage:      err.Error(),
			})
			writeError(w, http.StatusUnauthorized, identity.ErrAuthentication.Error())
			return
		case errors.Is(err, identity.ErrAuthorization):
			subject := audit.Subject{ClientIP: ipString(clientIP)}
			if id != nil {
				subject.UserID = id.UserID
				subject.Role = id.Role.String()
			}
			a.logger.Warn("rejected role override",
				zap.String("user_id", subject.UserID),
				zap.String("requested", override),
				zap.Error(err))
			a.auditor.Log(ctx, audit.ViewAsDeniedEvent{
				Subject:       subject,
				RequestedRole: override,
				Reason:        err.Error(),
			})
			writeError(w, http.StatusForbidden, identity.ErrAuthorization.Error())
			return
		case err != nil:
			a.logger.Error("failed to resolve role", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if id == nil {
			id = identity.Guest()
		}
		id.WithActingRole(acting, override).WithRemoteIP(clientIP)

		next.ServeHTTP(w, r.WithContext(identity.Set(ctx, id)))
	})
}

// RequireAuthentication rejects guests with 401. It must run after
// Authenticator.Middleware.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !identity.FromContext(r.Context()).Authenticated() {
			writeError(w, http.StatusUnauthorized, identity.ErrAuthentication.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func ipString(ip net.IP) string {
	if ip == nil {
		return ""
	}
	return ip.String()
}
