package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Start runs the event router, the modules and the HTTP servers until ctx is done, then
// shuts everything down.
func (app *App) Start(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		if err := app.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("message router stopped: %w", err)
		}
	}()

	app.wg.Add(1)
	go app.ExamModule.Run(ctx, &app.wg)

	serve := func(srv *http.Server, name string) {
		app.Logger.InfoContext(ctx, "Starting HTTP server", "server", name, "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}
	go serve(app.server, "api")
	if app.metricsServer != nil {
		go serve(app.metricsServer, "metrics")
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		app.Logger.ErrorContext(ctx, "Component failed", "error", runErr)
	}

	return errors.Join(runErr, app.Shutdown(context.WithoutCancel(ctx)))
}
