package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/db"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/permission"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the Shovel Heroes API server",
	Long: `Run the Shovel Heroes API server.

The server requires DATABASE_URL and a jwt_secret of at least 32 bytes
(SHOVEL_JWT_SECRET). Audit events are persisted to AUDIT_DATABASE_URL,
which defaults to DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.
If permissions_file is set, it is applied on startup and reapplied
whenever it changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind-address") {
			cfg.BindAddress, _ = cmd.Flags().GetString("bind-address")
		}

		logger := mustLogger(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if err := runServer(cfg, logger, !noMigrate); err != nil {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	defaults := config.Default()
	serverCmd.Flags().IntP("port", "p", defaults.Port, "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaults.BindAddress, "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(cfg *config.Config, logger *zap.Logger, migrateOnStart bool) error {
	if migrateOnStart {
		logger.Info("running database migrations")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	database, err := connect(logger.Named("db"), cfg.LogLevel == "debug")
	if err != nil {
		return err
	}

	stores := server.GormStores(database)

	auditOpts := []audit.Option{audit.WithErrorLogger(logger.Named("audit"))}
	if cfg.AuditEnabled {
		auditStore, err := audit.NewStore(db.AuditURL())
		if err != nil {
			return err
		}
		if auditStore != nil {
			defer func() { _ = auditStore.Close() }()
			stores.AuditLogs = auditStore
			auditOpts = append(auditOpts, audit.WithStore(auditStore))
		}
	} else {
		auditOpts = append(auditOpts, audit.Disabled())
	}

	s, err := server.NewServer(cfg, stores, logger, server.WithAuditor(audit.NewLogger(auditOpts...)))
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.PermissionsFile != "" {
		watcher := permission.NewWatcher(cfg.PermissionsFile, s.Permissions, logger.Named("watcher"))
		if err := watcher.Apply(ctx); err != nil {
			return err
		}
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		logger.Info("listening", zap.String("address", s.Addr()), zap.String("version", endpoints.Version))
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
