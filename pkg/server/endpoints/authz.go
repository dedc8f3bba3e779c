package endpoints

import (
	"net/http"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/identity"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// requirePermission gates next on the acting role holding action on
// resourceKey. A missing rule is a plain 403.
func requirePermission(checker permission.Checker, resourceKey string, action role.Action, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identity.FromContext(r.Context())
		if !checker.Can(r.Context(), id.ActingRole, resourceKey, action) {
			respondWithError(w, http.StatusForbidden, "insufficient privilege")
			return
		}
		next(w, r)
	}
}

// requireAuthentication rejects guests before any permission check runs.
func requireAuthentication(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !identity.FromContext(r.Context()).Authenticated() {
			respondWithError(w, http.StatusUnauthorized, identity.ErrAuthentication.Error())
			return
		}
		next(w, r)
	}
}

func subjectOf(id *identity.Identity) audit.Subject {
	subject := audit.Subject{}
	if id == nil {
		return subject
	}
	subject.UserID = id.UserID
	if id.Authenticated() {
		subject.Role = id.Role.String()
	}
	subject.ActingRole = id.ActingRole.String()
	if id.RemoteIP != nil {
		subject.ClientIP = id.RemoteIP.String()
	}
	return subject
}
