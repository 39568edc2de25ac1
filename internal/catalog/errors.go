package catalog

import "errors"

// Catalog loading errors. A catalog with any of these problems is rejected
// as a whole before a scan starts.
var (
	// ErrCatalogNotFound is returned when an explicitly given catalog
	// directory does not exist.
	ErrCatalogNotFound = errors.New("catalog directory not found")

	// ErrUnsupportedFormat is returned by LoadFile for unknown extensions.
	ErrUnsupportedFormat = errors.New("unsupported catalog file format")

	// ErrMissingName is returned when a target has no name.
	ErrMissingName = errors.New("target has no name")

	// ErrDuplicateTarget is returned when two targets share a name.
	ErrDuplicateTarget = errors.New("duplicate target name")

	// ErrPlaceholder is returned when a URL template does not contain
	// exactly one handle placeholder.
	ErrPlaceholder = errors.New("url must contain exactly one {handle} placeholder")

	// ErrInvalidWeight is returned when a confidence weight is outside [0,1].
	ErrInvalidWeight = errors.New("confidence_weight must be between 0 and 1")

	// ErrInvalidStatusCode is returned when exists_status is not an HTTP
	// status code.
	ErrInvalidStatusCode = errors.New("exists_status must be an HTTP status code")
)
