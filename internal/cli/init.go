// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/acconti and cmd/acconti-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"acconti/internal/config"
	applog "acconti/internal/log"
	"acconti/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default. LOG_FORMAT=json switches to JSON output.
func SetupLogger(component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	cfg.JSON = os.Getenv("LOG_FORMAT") == "json"
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.Level = slog.LevelDebug
	}

	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	sqliteRepo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return sqliteRepo
}
