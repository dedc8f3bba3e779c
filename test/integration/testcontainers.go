package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	migrations "github.com/shovel-heroes/shovel-heroes-go/db"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/db"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/endpoints"
)

// jwtSecret signs session tokens in both server modes.
const jwtSecret = "integration-test-secret-0123456789abcdef"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	ServerURL   string
	HTTPClient  *http.Client

	inline  *httptest.Server
	process *exec.Cmd
	cancel  context.CancelFunc
}

// NewTestContext starts PostgreSQL in a container, migrates it and starts
// the API server.
//
// Modes:
//   - Inline mode (default): the server runs in-process
//   - Binary mode: set SHOVEL_BINARY to the path of a shovelctl binary
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shovel_test"),
		tcpostgres.WithUsername("shovel"),
		tcpostgres.WithPassword("shovel"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	tc := &TestContext{
		Container:  pgContainer,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}

	tc.DatabaseURL, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := migrateUp(tc.DatabaseURL); err != nil {
		tc.Close(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	tc.DB, err = db.Connect(db.Config{URL: tc.DatabaseURL})
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	if binaryPath := os.Getenv("SHOVEL_BINARY"); binaryPath != "" {
		log.Printf("Using binary: %s", binaryPath)
		err = tc.startBinary(binaryPath)
	} else {
		log.Println("Using inline server mode")
		err = tc.startInline()
	}
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}

	if err := waitForServer(tc.ServerURL, 30*time.Second); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

func migrateUp(dbURL string) error {
	sub, err := fs.Sub(migrations.Migrations, "migrations")
	if err != nil {
		return err
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (tc *TestContext) startInline() error {
	cfg := config.Default()
	cfg.JWTSecret = jwtSecret
	cfg.PermissionCacheTTL = 0

	auditStore, err := audit.NewStore(tc.DatabaseURL)
	if err != nil {
		return err
	}
	stores := server.GormStores(tc.DB)
	stores.AuditLogs = auditStore

	s, err := server.NewServer(cfg, stores, zap.NewNop(),
		server.WithAccessLog(io.Discard),
		server.WithAuditor(audit.NewLogger(audit.WithWriter(nil), audit.WithStore(auditStore))),
	)
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	tc.inline = httptest.NewServer(s.Handler())
	tc.ServerURL = tc.inline.URL
	return nil
}

func (tc *TestContext) startBinary(binaryPath string) error {
	port, err := freePort()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	// Migrations already ran during setup.
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", strconv.Itoa(port))
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+tc.DatabaseURL,
		"SHOVEL_JWT_SECRET="+jwtSecret,
		"SHOVEL_PERMISSION_CACHE_TTL=0",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start binary: %w", err)
	}

	tc.process = cmd
	tc.cancel = cancel
	tc.ServerURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	return nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// waitForServer polls the server until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.inline != nil {
		tc.inline.Close()
	}
	if tc.cancel != nil {
		tc.cancel()
	}
	if tc.process != nil && tc.process.Process != nil {
		_ = tc.process.Process.Kill()
		_ = tc.process.Wait()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
