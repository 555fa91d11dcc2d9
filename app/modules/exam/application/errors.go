package examservice

import (
	"errors"

	"github.com/Black-And-White-Club/dojo-portal/app/modules/exam/application/parsers"
)

var (
	// ErrNotFound is returned by directory lookups when the code matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrEmptyUpload is returned when the uploaded file has no content.
	ErrEmptyUpload = errors.New("uploaded file is empty")

	// ErrUnknownKind is returned for an import kind other than exam results or test registrations.
	ErrUnknownKind = errors.New("unknown import kind")
)

// IsUploadError reports whether err means the uploaded file itself was unusable, as
// opposed to an infrastructure failure.
func IsUploadError(err error) bool {
	var formatErr *parsers.FormatError
	return errors.As(err, &formatErr) || errors.Is(err, ErrEmptyUpload) || errors.Is(err, ErrUnknownKind)
}
