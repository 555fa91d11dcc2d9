package exam

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/adapters"
	examhandlers "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/handlers"
	exammetrics "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/metrics"
	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	examrouter "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/router"
	"github.com/Black-And-White-Club/dojo-portal/config"
	"github.com/Black-And-White-Club/dojo-portal/pkg/eventbus"
	"github.com/Black-And-White-Club/dojo-portal/pkg/jwt"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Deps are the shared components the exam module is built from.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry prometheus.Registerer
	EventBus eventbus.EventBus
	// Router may be nil when the module is only used for direct imports.
	Router     *message.Router
	HTTPRouter chi.Router
	DB         *bun.DB
}

// Module represents the exam module.
type Module struct {
	ExamService examservice.Service
	ExamRouter  *examrouter.ExamRouter
	cancelFunc  context.CancelFunc
	logger      *slog.Logger
}

// NewExamModule creates and initializes a new exam module.
func NewExamModule(ctx context.Context, deps Deps) (*Module, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	logger.InfoContext(ctx, "exam.NewExamModule initializing")

	// 1. Initialize Repository and lookups
	repo := examdb.NewRepository(deps.DB)
	directories := adapters.NewDirectoryAdapter(repo, nil)

	// 2. Initialize Metrics
	var metrics exammetrics.ExamMetrics = exammetrics.NewNoop()
	if deps.Registry != nil {
		pm, err := exammetrics.NewPrometheusMetrics(deps.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register exam metrics: %w", err)
		}
		metrics = pm
	}

	// 3. Initialize Service
	service := examservice.NewExamService(
		repo,
		directories.Directories(),
		parsers.NewFactory(),
		logger,
		metrics,
		deps.Tracer,
		deps.DB,
		examservice.Config{
			Workers:          cfg.Import.Workers,
			Timeout:          cfg.Import.Timeout,
			DefaultBeltLabel: cfg.Import.DefaultBeltLabel,
		},
	)

	// 4. Initialize Handlers
	handlers := examhandlers.NewExamHandlers(service, logger, deps.Tracer, cfg.Import.MaxUploadBytes)

	if deps.HTTPRouter != nil {
		examhandlers.RegisterRoutes(deps.HTTPRouter, handlers, examhandlers.RouteConfig{
			Tokens:         jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.DefaultTTL),
			Limiter:        examhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst),
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
		})
	}

	module := &Module{
		ExamService: service,
		logger:      logger,
	}

	// 5. Initialize and configure the event router
	if deps.Router != nil && deps.EventBus != nil {
		examRouter := examrouter.NewExamRouter(logger, deps.Router, deps.EventBus, deps.EventBus, deps.Tracer, deps.Registry)
		if err := examRouter.Configure(ctx, handlers); err != nil {
			return nil, fmt.Errorf("failed to configure exam router: %w", err)
		}
		module.ExamRouter = examRouter
	}

	return module, nil
}

// Run blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting exam module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Exam module goroutine stopped")
}

// Close shuts down the exam module.
func (m *Module) Close() error {
	m.logger.Info("Stopping exam module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.ExamRouter != nil {
		if err := m.ExamRouter.Close(); err != nil {
			m.logger.Error("Error closing ExamRouter from module", "error", err)
			return fmt.Errorf("error closing ExamRouter: %w", err)
		}
	}

	m.logger.Info("Exam module stopped")
	return nil
}
