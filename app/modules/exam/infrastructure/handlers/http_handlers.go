package examhandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	examservice "github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application"
	"github.com/Black-And-White-Club/dojo-portal/pkg/attr"
	"github.com/go-chi/chi/v5"
)

const (
	uploadFormField = "file"
	testIDFormField = "test_id"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
	multipartMemory = 8 << 20
	// statusClientClosedRequest is the nginx convention for a client that went away.
	statusClientClosedRequest = 499
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func (h *ExamHandlers) HandleHTTPImportResults(w http.ResponseWriter, r *http.Request) {
	h.handleHTTPImport(w, r, examservice.KindExamResults)
}

func (h *ExamHandlers) HandleHTTPImportRegistrations(w http.ResponseWriter, r *http.Request) {
	h.handleHTTPImport(w, r, examservice.KindTestRegistrations)
}

func (h *ExamHandlers) handleHTTPImport(w http.ResponseWriter, r *http.Request, kind examservice.ImportKind) {
	ctx := r.Context()

	if r.ContentLength > h.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \""+uploadFormField+"\" is required")
		return
	}
	defer file.Close()

	testID, err := examservice.ParseTestID(r.FormValue(testIDFormField))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestedBy := ""
	if claims := ClaimsFromContext(ctx); claims != nil {
		requestedBy = claims.Subject
	}

	report, err := h.service.Import(ctx, examservice.ImportRequest{
		Kind:          kind,
		FileName:      header.Filename,
		Data:          file,
		DefaultTestID: testID,
		RequestedBy:   requestedBy,
	})
	if err != nil {
		switch {
		case examservice.IsUploadError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "import timed out while reading the file")
		case errors.Is(err, context.Canceled):
			h.logger.WarnContext(ctx, "Import request cancelled", attr.String("file_name", header.Filename))
			writeError(w, statusClientClosedRequest, "import cancelled")
		default:
			h.logger.ErrorContext(ctx, "Import request failed",
				attr.String("kind", string(kind)),
				attr.String("file_name", header.Filename),
				attr.Error(err),
			)
			writeError(w, http.StatusInternalServerError, "import failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// HandleHTTPTemplate serves an empty import workbook.
func (h *ExamHandlers) HandleHTTPTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.WriteTemplate(r.Context(), &buf); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to build import template", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to build template")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="exam-import-template.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ExamHandlers) HandleHTTPListResults(w http.ResponseWriter, r *http.Request) {
	h.handleHTTPList(w, r, examservice.KindExamResults)
}

func (h *ExamHandlers) HandleHTTPListRegistrations(w http.ResponseWriter, r *http.Request) {
	h.handleHTTPList(w, r, examservice.KindTestRegistrations)
}

func (h *ExamHandlers) handleHTTPList(w http.ResponseWriter, r *http.Request, kind examservice.ImportKind) {
	testID, err := strconv.ParseInt(chi.URLParam(r, "testID"), 10, 64)
	if err != nil || testID <= 0 {
		writeError(w, http.StatusBadRequest, "test id must be a positive integer")
		return
	}

	records, err := h.service.ListRecords(r.Context(), kind, testID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list exam records",
			attr.String("kind", string(kind)),
			attr.Int64("test_id", testID),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	writeJSON(w, http.StatusOK, records)
}
