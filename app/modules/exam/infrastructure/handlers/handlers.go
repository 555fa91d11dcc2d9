package examhandlers

import (
	"bytes"
	"context"
	"log/slog"

	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
	"github.com/Black-And-White-Club/dojo-portal/pkg/attr"
	examevents "github.com/Black-And-White-Club/dojo-portal/pkg/events/exam"
	"github.com/Black-And-White-Club/dojo-portal/pkg/handlerwrapper"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultMaxUploadBytes caps an uploaded sheet when no limit is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// ExamHandlers implements the Handlers interface.
type ExamHandlers struct {
	service        examservice.Service
	logger         *slog.Logger
	tracer         trace.Tracer
	maxUploadBytes int64
}

// NewExamHandlers creates a new ExamHandlers instance.
func NewExamHandlers(
	service examservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	maxUploadBytes int64,
) *ExamHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("exam")
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &ExamHandlers{
		service:        service,
		logger:         logger,
		tracer:         tracer,
		maxUploadBytes: maxUploadBytes,
	}
}

// HandleImportRequested runs the import pipeline on the uploaded content and publishes the
// report, or the reason the file could not be read.
func (h *ExamHandlers) HandleImportRequested(ctx context.Context, payload *examevents.ExamImportRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "ExamHandlers.HandleImportRequested")
	defer span.End()

	importID := payload.ImportID
	if importID == "" {
		importID = uuid.NewString()
	}

	h.logger.InfoContext(ctx, "Exam import requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("import_id", importID),
		attr.String("kind", payload.Kind),
		attr.String("file_name", payload.FileName),
		attr.Int("bytes", len(payload.Content)),
	)

	failed := func(err error) []handlerwrapper.Result {
		return []handlerwrapper.Result{{
			Topic: examevents.ExamImportFailedV1,
			Payload: &examevents.ExamImportFailedPayloadV1{
				ImportID: importID,
				Kind:     payload.Kind,
				FileName: payload.FileName,
				Error:    err.Error(),
			},
		}}
	}

	kind, err := examservice.ParseImportKind(payload.Kind)
	if err != nil {
		h.logger.WarnContext(ctx, "Rejected import request", attr.String("import_id", importID), attr.Error(err))
		return failed(err), nil
	}

	report, err := h.service.Import(ctx, examservice.ImportRequest{
		Kind:          kind,
		FileName:      payload.FileName,
		Data:          bytes.NewReader(payload.Content),
		DefaultTestID: payload.DefaultTestID,
		RequestedBy:   payload.RequestedBy,
	})
	if err != nil {
		if examservice.IsUploadError(err) {
			h.logger.WarnContext(ctx, "Import file rejected", attr.String("import_id", importID), attr.Error(err))
			return failed(err), nil
		}
		// Import errors are terminal; nothing is redelivered.
		h.logger.ErrorContext(ctx, "Import failed", attr.String("import_id", importID), attr.Error(err))
		span.RecordError(err)
		return failed(err), nil
	}

	return []handlerwrapper.Result{{
		Topic:   examevents.ExamImportCompletedV1,
		Payload: completedPayload(importID, payload, report),
	}}, nil
}

func completedPayload(importID string, req *examevents.ExamImportRequestedPayloadV1, report *examservice.ImportReport) *examevents.ExamImportCompletedPayloadV1 {
	out := &examevents.ExamImportCompletedPayloadV1{
		ImportID: importID,
		Kind:     req.Kind,
		FileName: req.FileName,
		Success:  report.Success,
		Imported: report.Imported,
		Failed:   report.Failed,
		Total:    report.Total,
		Errors:   make([]examevents.RowIssueV1, 0, len(report.Errors)),
		Warnings: make([]examevents.RowIssueV1, 0, len(report.Warnings)),
	}
	for _, e := range report.Errors {
		out.Errors = append(out.Errors, examevents.RowIssueV1(e))
	}
	for _, w := range report.Warnings {
		out.Warnings = append(out.Warnings, examevents.RowIssueV1(w))
	}
	return out
}

var _ Handlers = (*ExamHandlers)(nil)
