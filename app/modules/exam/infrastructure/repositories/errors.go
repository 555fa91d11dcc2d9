package examdb

import "errors"

// Sentinel errors for the exam repository layer. The service maps them onto row outcomes.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("exam record not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE affected zero rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
