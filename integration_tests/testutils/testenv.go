package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/Black-And-White-Club/dojo-portal/config"
	"github.com/Black-And-White-Club/dojo-portal/integration_tests/containers"
	"github.com/Black-And-White-Club/dojo-portal/pkg/eventbus"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Config        *config.Config
	Logger        *slog.Logger
}

// NewTestEnvironment starts Postgres, applies the migrations and creates an in-process bus.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cfg := &config.Config{Postgres: config.PostgresConfig{DSN: pgConnStr}}
	cfg.JWT.Secret = "integration-secret"
	if err := cfg.Validate(); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	return &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		PgContainer:   pgContainer,
		DB:            db,
		EventBus:      eventbus.NewGoChannelBus(logger, cfg.EventBus.BufferSize),
		Config:        cfg,
		Logger:        logger,
	}, nil
}

// Reset truncates all application tables.
func (env *TestEnvironment) Reset(t testing.TB) {
	t.Helper()
	if err := CleanupDatabase(env.Ctx, env.DB); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}

// Cleanup releases the bus, the connection and the container.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		_ = env.EventBus.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(context.Background())
	}
	if env.CancelContext != nil {
		env.CancelContext()
	}
}
