package parsers

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFile is wrapped by the FormatError returned for unknown extensions.
var ErrUnsupportedFile = errors.New("unsupported file type")

// ExtractorFactory selects an extractor for an uploaded file name.
type ExtractorFactory interface {
	ForFileName(name string) (Extractor, error)
}

// Factory creates the appropriate extractor based on file extension
type Factory struct{}

// NewFactory creates a new extractor factory
func NewFactory() *Factory {
	return &Factory{}
}

// ForFileName returns the extractor for the given file name.
func (f *Factory) ForFileName(name string) (Extractor, error) {
	ext := strings.ToLower(filepath.Ext(name))

	switch ext {
	case ".csv":
		return NewCSVExtractor(), nil
	case ".xlsx", ".xlsm":
		return NewXLSXExtractor(), nil
	default:
		if ext == "" {
			ext = "(none)"
		}
		return nil, &FormatError{Format: "upload", Message: "extension " + ext + " (expected .csv or .xlsx)", Err: ErrUnsupportedFile}
	}
}
