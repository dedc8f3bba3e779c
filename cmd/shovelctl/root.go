package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/db"
)

var rootCmd = &cobra.Command{
	Use:   "shovelctl",
	Short: "Shovel Heroes server and administration tool",
	Long: `Run and administer the Shovel Heroes disaster relief API.

Configuration is read from $SHOVEL_CONFIG_PATH/shovel.yml and SHOVEL_*
environment variables. The database is taken from DATABASE_URL.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// loadConfig loads and validates the configuration, exiting on failure.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if level == "debug" {
		zc = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc.Level = lvl
	return zc.Build()
}

// mustLogger builds the application logger for level, exiting on failure.
func mustLogger(level string) *zap.Logger {
	logger, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func connect(logger *zap.Logger, debug bool) (*gorm.DB, error) {
	if db.URL() == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return db.Connect(db.Config{Debug: debug, Logger: logger})
}
