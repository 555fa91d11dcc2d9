package examhandlers

import (
	"context"
	"net/http"

	examevents "github.com/Black-And-White-Club/dojo-portal/pkg/events/exam"
	"github.com/Black-And-White-Club/dojo-portal/pkg/handlerwrapper"
)

// Handlers defines the exam event and HTTP handlers.
type Handlers interface {
	// HandleImportRequested runs an import requested over the event bus.
	HandleImportRequested(ctx context.Context, payload *examevents.ExamImportRequestedPayloadV1) ([]handlerwrapper.Result, error)

	HandleHTTPImportResults(w http.ResponseWriter, r *http.Request)
	HandleHTTPImportRegistrations(w http.ResponseWriter, r *http.Request)
	HandleHTTPTemplate(w http.ResponseWriter, r *http.Request)
	HandleHTTPListResults(w http.ResponseWriter, r *http.Request)
	HandleHTTPListRegistrations(w http.ResponseWriter, r *http.Request)
}
