package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam"
	"github.com/Black-And-White-Club/dojo-portal/config"
	"github.com/Black-And-White-Club/dojo-portal/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
)

const serviceName = "dojo-portal"

// App wires the modules to the database, the event bus and the HTTP server.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *bun.DB
	EventBus   eventbus.EventBus
	Router     *message.Router
	Registry   *prometheus.Registry
	HTTPRouter chi.Router
	ExamModule *exam.Module

	server        *http.Server
	metricsServer *http.Server
	wg            sync.WaitGroup
}

// NewLogger builds the process logger from the observability settings.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler).With(slog.String("service", serviceName))
	if env := cfg.Observability.Environment; env != "" {
		logger = logger.With(slog.String("environment", env))
	}
	return logger, nil
}

// OpenDB connects to Postgres through pgdriver and checks the connection.
func OpenDB(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	bus := eventbus.NewGoChannelBus(logger, cfg.EventBus.BufferSize)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 30 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	httpRouter := newHTTPRouter(registry, cfg.Observability.MetricsAddress == "")

	examModule, err := exam.NewExamModule(ctx, exam.Deps{
		Config:     cfg,
		Logger:     logger,
		Tracer:     otel.Tracer(serviceName),
		Registry:   registry,
		EventBus:   bus,
		Router:     router,
		HTTPRouter: httpRouter,
		DB:         db,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize exam module: %w", err)
	}

	app := &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		EventBus:   bus,
		Router:     router,
		Registry:   registry,
		HTTPRouter: httpRouter,
		ExamModule: examModule,
		server: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpRouter,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	if addr := cfg.Observability.MetricsAddress; addr != "" {
		app.metricsServer = &http.Server{
			Addr:              addr,
			Handler:           metricsHandler(registry),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return app, nil
}
