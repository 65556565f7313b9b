package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hatchling-app/profile-api/internal/config"
	"github.com/hatchling-app/profile-api/internal/domain"
	"github.com/hatchling-app/profile-api/internal/platform/postgres"
	"github.com/hatchling-app/profile-api/internal/service"
	"github.com/hatchling-app/profile-api/internal/task"
)

// application holds the initialized dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	profileService *service.ProfileService
	autoSaver      *task.AutoSaver
}

// newApplication creates an application instance with all dependencies
// initialized. The database connection must already be established and
// migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	listener := postgres.NewChangeListener(cfg.Database.URL, logger)
	profileStore := postgres.NewProfileStore(db, listener, logger)

	repo, err := service.NewProfileRepository(profileStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile repository: %w", err)
	}

	app.profileService, err = service.NewProfileService(repo, domain.NewValidator(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile service: %w", err)
	}

	app.autoSaver = task.NewAutoSaver(
		app.saveNameDraft,
		task.AutoSaverConfig{Debounce: cfg.Autosave.Debounce()},
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// saveNameDraft commits a debounced name value through the update-name use
// case, draining its state sequence to a single error result.
func (app *application) saveNameDraft(ctx context.Context, name string) error {
	for state := range app.profileService.UpdateName(ctx, name) {
		if state.IsError() {
			if state.Err != nil {
				return state.Err
			}
			return fmt.Errorf("name update failed: %s", state.Message)
		}
	}
	return nil
}

// Run starts the background pipelines and the HTTP server, blocking until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	app.autoSaver.Start()

	router := app.setupRouter()
	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.autoSaver.Stop()
	app.logger.Info("Background pipelines stopped")
}
