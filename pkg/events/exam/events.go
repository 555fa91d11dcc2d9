// Package examevents defines the topics and payloads of the exam import flow.
package examevents

import "time"

const (
	// ExamImportRequestedV1 asks the exam module to import an uploaded sheet.
	ExamImportRequestedV1 = "exam.import.requested.v1"
	// ExamImportCompletedV1 carries the report of an import that ran.
	ExamImportCompletedV1 = "exam.import.completed.v1"
	// ExamImportFailedV1 is published when the sheet could not be read at all.
	ExamImportFailedV1 = "exam.import.failed.v1"
)

// ExamImportRequestedPayloadV1 is the payload of ExamImportRequestedV1.
type ExamImportRequestedPayloadV1 struct {
	ImportID      string    `json:"import_id"`
	Kind          string    `json:"kind"`
	FileName      string    `json:"file_name"`
	Content       []byte    `json:"content"`
	DefaultTestID int64     `json:"default_test_id,omitempty"`
	RequestedBy   string    `json:"requested_by,omitempty"`
	RequestedAt   time.Time `json:"requested_at"`
}

// RowIssueV1 is one row error or warning.
type RowIssueV1 struct {
	Row     int    `json:"row"`
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ExamImportCompletedPayloadV1 is the payload of ExamImportCompletedV1.
type ExamImportCompletedPayloadV1 struct {
	ImportID string       `json:"import_id"`
	Kind     string       `json:"kind"`
	FileName string       `json:"file_name"`
	Success  bool         `json:"success"`
	Imported int          `json:"imported"`
	Failed   int          `json:"failed"`
	Total    int          `json:"total"`
	Errors   []RowIssueV1 `json:"errors"`
	Warnings []RowIssueV1 `json:"warnings"`
}

// ExamImportFailedPayloadV1 is the payload of ExamImportFailedV1.
type ExamImportFailedPayloadV1 struct {
	ImportID string `json:"import_id"`
	Kind     string `json:"kind"`
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}
