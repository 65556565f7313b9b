// Package main implements the entry point for the profile API server,
// which stores the singleton baby profile and serves its change stream.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	// Registers the pgx stdlib driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hatchling-app/profile-api/internal/config"
	"github.com/hatchling-app/profile-api/internal/platform/logger"
	"github.com/hatchling-app/profile-api/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// run loads configuration, prepares the database and hands off to the
// application. It returns once the server has shut down.
func run() error {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	appLogger.Info("Database migrations applied")

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
