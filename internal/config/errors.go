package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoHandle is returned when no handle is given on the command line.
	ErrNoHandle = errors.New("no handle specified")

	// ErrInvalidHandle is returned for empty handles or handles containing
	// whitespace.
	ErrInvalidHandle = errors.New("invalid handle: must be non-empty and contain no whitespace")

	// ErrInvalidTimeout is returned when the probe timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is negative.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be zero (unbounded) or positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown, --csv and --html is given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose one of --json, --markdown, --csv, --html")

	// ErrUnknownExtractor is returned for an extractor other than regex or html.
	ErrUnknownExtractor = errors.New("unknown extractor: must be regex or html")

	// ErrConflictingNetworkModes is returned when the embedded Tor daemon is
	// combined with another proxy setting.
	ErrConflictingNetworkModes = errors.New("conflicting network settings: --embedded-tor cannot be combined with --proxy, --use-proxy or --tor-address")
)
