package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/middleware"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
	gormstore "github.com/shovel-heroes/shovel-heroes-go/pkg/server/store/gorm"
)

// Stores groups the persistence interfaces used by the endpoints.
type Stores struct {
	Users         store.UsersStore
	Grids         store.GridsStore
	Volunteers    store.VolunteersStore
	Donations     store.DonationsStore
	Announcements store.AnnouncementsStore
	Permissions   store.PermissionsStore
	Health        store.HealthStore
	AuditLogs     store.AuditLogsStore
}

var _ store.AuditLogsStore = (*audit.Store)(nil)

// GormStores returns the GORM implementation of every store. Audit logs
// are not included since they may live in a separate database.
func GormStores(db *gorm.DB) Stores {
	return Stores{
		Users:         gormstore.NewUsersStore(db),
		Grids:         gormstore.NewGridsStore(db),
		Volunteers:    gormstore.NewVolunteersStore(db),
		Donations:     gormstore.NewDonationsStore(db),
		Announcements: gormstore.NewAnnouncementsStore(db),
		Permissions:   gormstore.NewPermissionsStore(db),
		Health:        gormstore.NewHealthStore(db),
	}
}

type Server struct {
	Router *mux.Router
	Config *config.Config
	Logger *zap.Logger

	Stores
	Permissions    *permission.Cache
	Authenticators *authenticator.Registry
	Sessions       *authn_jwt.Authenticator
	Auditor        audit.Auditor
	Authn          *middleware.Authenticator

	srv *http.Server
}

// Option configures optional Server collaborators.
type Option func(*options)

type options struct {
	auditor   audit.Auditor
	accessLog io.Writer
}

// WithAuditor sets the audit sink. The default discards events.
func WithAuditor(a audit.Auditor) Option {
	return func(o *options) {
		o.auditor = a
	}
}

// WithAccessLog sets where the combined access log is written. The default
// is stdout.
func WithAccessLog(w io.Writer) Option {
	return func(o *options) {
		o.accessLog = w
	}
}

// NewServer wires the permission cache, authenticators and middleware
// around stores. cfg must already be validated.
func NewServer(cfg *config.Config, stores Stores, logger *zap.Logger, opts ...Option) (*Server, error) {
	o := options{auditor: audit.Nop(), accessLog: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	sessions, err := authn_jwt.New(stores.Users, authn_jwt.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.SessionTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	registry := authenticator.NewRegistry(authn.New(stores.Users), sessions)
	if err := registry.Enable(cfg.Authenticators...); err != nil {
		return nil, err
	}

	cache := permission.NewCache(stores.Permissions, logger.Named("permissions"),
		permission.WithTTL(cfg.CacheTTL()))

	router := mux.NewRouter()
	s := &Server{
		Router:         router,
		Config:         cfg,
		Logger:         logger,
		Stores:         stores,
		Permissions:    cache,
		Authenticators: registry,
		Sessions:       sessions,
		Auditor:        o.auditor,
		Authn:          middleware.NewAuthenticator(sessions, o.auditor, logger.Named("authn"), trusted),
	}

	cors := handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "If-None-Match", middleware.ViewAsHeader}),
		handlers.ExposedHeaders([]string{"ETag"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger.Named("recovery"))),
		handlers.PrintRecoveryStack(true),
	)

	s.srv = &http.Server{
		Handler:           handlers.LoggingHandler(o.accessLog, recovery(cors(router))),
		Addr:              cfg.ListenAddress(),
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the full handler chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
