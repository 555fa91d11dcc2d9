package examservice

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ImportKind selects where accepted rows are persisted.
type ImportKind string

const (
	KindExamResults       ImportKind = "exam_results"
	KindTestRegistrations ImportKind = "test_registrations"
)

// ParseImportKind validates a kind coming from a request.
func ParseImportKind(s string) (ImportKind, error) {
	switch k := ImportKind(s); k {
	case KindExamResults, KindTestRegistrations:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// ImportRequest is one uploaded file.
type ImportRequest struct {
	Kind     ImportKind
	FileName string
	Data     io.Reader
	// DefaultTestID applies to rows whose testId cell is empty. Zero means none.
	DefaultTestID int64
	RequestedBy   string
}

// Scores holds the nine category scores in column order; nil means the cell was empty.
type Scores [CategoryCount]*int

// ExamResultRow is a row that passed field validation.
type ExamResultRow struct {
	TestID          int64
	ClubCode        string
	MemberCode      string
	FullName        string
	Gender          string
	DateOfBirth     *time.Time
	TargetBeltLabel string
	Scores          Scores
	Notes           string
}

// References are the identifiers a row resolved to.
type References struct {
	ClubID   uuid.UUID
	MemberID uuid.UUID
	BeltID   uuid.UUID
}

// Outcome of an examination row.
type Outcome string

const (
	OutcomePass    Outcome = "Pass"
	OutcomeFail    Outcome = "Fail"
	OutcomePending Outcome = "Pending"
)

// Evaluation is the scoring result of one row.
type Evaluation struct {
	Composite float64
	Outcome   Outcome
	// Missing lists the category columns that were empty on a partially scored row.
	Missing []int
}

// ResolvedExamResult is a validated, resolved and scored row ready to persist.
type ResolvedExamResult struct {
	Row        ExamResultRow
	References References
	Evaluation Evaluation
}

// RowError is one row-level failure. Field is empty when the failure is not tied to a column.
type RowError struct {
	Row     int    `json:"row"`
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Warning is informational and never fails a row.
type Warning struct {
	Row     int    `json:"row"`
	Line    int    `json:"line"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportReport summarises one import.
type ImportReport struct {
	Success  bool       `json:"success"`
	Imported int        `json:"imported"`
	Failed   int        `json:"failed"`
	Total    int        `json:"total"`
	Errors   []RowError `json:"errors"`
	Warnings []Warning  `json:"warnings"`
}

// ExamRecord is a stored result or registration as listed back to administrators.
type ExamRecord struct {
	TestID    int64     `json:"testId"`
	MemberID  uuid.UUID `json:"memberId"`
	ClubID    uuid.UUID `json:"clubId"`
	BeltID    uuid.UUID `json:"beltId"`
	FullName  string    `json:"fullName"`
	Composite float64   `json:"composite"`
	Outcome   Outcome   `json:"outcome"`
	UpdatedAt time.Time `json:"updatedAt"`
}
