// Package errs holds the sentinel error kinds shared across the pipeline,
// so callers can test them with errors.Is regardless of which stage
// produced the wrapped error.
package errs

import "errors"

var (
	// ErrInvalidInput covers malformed parameters: grid dimensions below
	// 2, or a simplify ratio outside (0, 1].
	ErrInvalidInput = errors.New("invalid input")

	// ErrInconsistentMesh covers a face referencing an out-of-range vertex
	// index; this is fatal and always surfaced, unlike the silent
	// NumericInvariantViolated handling of degenerate faces.
	ErrInconsistentMesh = errors.New("inconsistent mesh")
)
