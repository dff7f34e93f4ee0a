// Package cli consolidates the process bootstrap shared by the server
// and worker binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"relocationos/internal/config"
	"relocationos/internal/log"
	"relocationos/internal/storage"
)

// LoadEnvFile loads the .env file for local development. Errors are
// ignored: the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL/LOG_FORMAT and
// installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: component,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and exits on validation
// failure. Validation problems are collected, so one run reports them all.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitStorage opens the SQLite repository, running pending migrations,
// or exits the process on failure.
func InitStorage(logger *log.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to open SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// SignalContext returns a context cancelled on SIGINT/SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownTimeout bounds how long a process drains after a signal.
const ShutdownTimeout = 10 * time.Second
