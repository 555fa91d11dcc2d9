package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const shutdownTimeout = 30 * time.Second

// Shutdown stops the HTTP servers first so no new imports start, then the event router,
// the modules, the bus and the database.
func (app *App) Shutdown(ctx context.Context) error {
	app.Logger.InfoContext(ctx, "Shutting down application...")

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server: %w", err))
		}
	}
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server: %w", err))
		}
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("message router: %w", err))
		}
	}
	if app.ExamModule != nil {
		if err := app.ExamModule.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	app.wg.Wait()
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	app.Logger.InfoContext(ctx, "Application stopped")
	return errors.Join(errs...)
}
