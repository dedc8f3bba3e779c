// Package server provides the HTTP server for the Shovel Heroes API.
//
// The server uses gorilla/mux for routing and gorilla/handlers for the
// access log, CORS and panic recovery.
//
// # Server Setup
//
//	srv, err := server.NewServer(cfg, server.GormStores(db), logger,
//	    server.WithAuditor(auditor))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	endpoints.RegisterAll(srv)
//	log.Fatal(srv.Start())
//
// # Components
//
// The Server struct holds:
//
//   - Stores: users, grids, registrations, donations, announcements,
//     role permissions and audit logs
//   - Permissions: the read-through permission cache
//   - Authenticators: the password and session token authenticators
//   - Authn: middleware that resolves the caller and acting role
//   - Auditor: the audit trail sink
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
package server
