package source

import "errors"

// Sentinel kinds for source adapter errors.
var (
	// ErrUnavailable marks a source that cannot contribute data at all,
	// whether from missing credentials or an API failure. Non-fatal.
	ErrUnavailable = errors.New("source unavailable")
)
