package examrouter

import (
	"context"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/dojo-portal/pkg/eventbus"
	examevents "github.com/Black-And-White-Club/dojo-portal/pkg/events/exam"
	"github.com/Black-And-White-Club/dojo-portal/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// Handlers are the event handlers the exam router dispatches to.
type Handlers interface {
	HandleImportRequested(ctx context.Context, payload *examevents.ExamImportRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// ExamRouter handles Watermill handler registration for exam events.
type ExamRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	tracer     trace.Tracer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewExamRouter creates a new ExamRouter. Router metrics are registered on registry unless
// running under APP_ENV=test.
func NewExamRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	registry prometheus.Registerer,
) *ExamRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil && !inTestEnv {
		b := metrics.NewPrometheusMetricsBuilder(registry, "exam", "")
		metricsBuilder = &b
	}

	return &ExamRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the router with middleware and handlers.
func (r *ExamRouter) Configure(_ context.Context, handlers Handlers) error {
	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
}

func (r *ExamRouter) registerHandlers(handlers Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering exam module handlers",
		slog.String("import_requested_topic", examevents.ExamImportRequestedV1),
	)

	registerHandler(deps, examevents.ExamImportRequestedV1, handlers.HandleImportRequested)
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "exam." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"", // the bus publishes each result to the topic in its metadata
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *ExamRouter) Close() error {
	return r.Router.Close()
}
