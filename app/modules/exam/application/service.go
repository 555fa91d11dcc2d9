package examservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
	exammetrics "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/metrics"
	examdb "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/infrastructure/repositories"
	"github.com/Black-And-White-Club/dojo-portal/pkg/attr"
	"github.com/Black-And-White-Club/dojo-portal/pkg/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "ExamService"

// DefaultWorkers bounds row resolution when no worker count is configured.
const DefaultWorkers = 8

// Config tunes the import pipeline.
type Config struct {
	// Workers bounds the rows validated and resolved at the same time.
	Workers int
	// Timeout bounds reading the upload. Zero means no limit.
	Timeout time.Duration
	// DefaultBeltLabel replaces an empty targetBeltLabel when set.
	DefaultBeltLabel string
}

// Directories are the lookups rows are resolved against.
type Directories struct {
	Clubs   ClubDirectory
	Members MemberDirectory
	Belts   BeltDirectory
}

// ExamService implements the Service interface.
type ExamService struct {
	repo      examdb.Repository
	factory   parsers.ExtractorFactory
	mapper    *Mapper
	resolver  *Resolver
	persister *persister
	cfg       Config
	logger    *slog.Logger
	metrics   exammetrics.ExamMetrics
	tracer    trace.Tracer
	db        *bun.DB
}

// NewExamService creates a new ExamService.
func NewExamService(
	repo examdb.Repository,
	dirs Directories,
	factory parsers.ExtractorFactory,
	logger *slog.Logger,
	metrics exammetrics.ExamMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *ExamService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = exammetrics.NewNoop()
	}
	if factory == nil {
		factory = parsers.NewFactory()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &ExamService{
		repo:      repo,
		factory:   factory,
		mapper:    NewMapper(cfg.DefaultBeltLabel),
		resolver:  NewResolver(dirs.Clubs, dirs.Members, dirs.Belts),
		persister: &persister{repo: repo, db: db},
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *ExamService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx runs a read operation within a read-only transaction. Imports write through
// the persister instead, one transaction per row.
func runInTx[S any, F any](
	s *ExamService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
