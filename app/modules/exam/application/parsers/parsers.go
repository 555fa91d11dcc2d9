// Package parsers turns uploaded spreadsheets into a stream of raw data rows.
package parsers

import (
	"fmt"
	"io"
	"strings"
)

// RawRow is one data row as it appears in the source file.
type RawRow struct {
	// Line is the 1-based physical row of the file; the header is line 1.
	Line  int
	Cells []string
}

// Blank reports whether every cell of the row is empty after trimming.
func (r RawRow) Blank() bool {
	for _, c := range r.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// RowReader yields data rows in file order. Next returns io.EOF once the rows are exhausted.
// The header row and blank rows are never returned.
type RowReader interface {
	Next() (RawRow, error)
	Close() error
}

// Extractor opens a tabular stream.
type Extractor interface {
	Open(r io.Reader) (RowReader, error)
}

// FormatError reports a stream that cannot be read as tabular data at all.
type FormatError struct {
	Format  string
	Message string
	Err     error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s file: %s: %v", e.Format, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid %s file: %s", e.Format, e.Message)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
