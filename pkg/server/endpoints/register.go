package endpoints

import (
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
)

// RegisterAll registers all API endpoints on the server. Every route runs
// behind the authentication middleware, which resolves the acting role.
func RegisterAll(srv *server.Server) {
	srv.Router.Use(srv.Authn.Middleware)

	RegisterStatusEndpoints(srv)
	RegisterAuthenticateEndpoints(srv)
	RegisterMeEndpoints(srv)
	RegisterGridsEndpoints(srv)
	RegisterVolunteersEndpoints(srv)
	RegisterDonationsEndpoints(srv)
	RegisterAnnouncementsEndpoints(srv)
	RegisterAdminPermissionsEndpoints(srv)
	RegisterAdminUsersEndpoints(srv)
	RegisterAdminAuditEndpoints(srv)
}
