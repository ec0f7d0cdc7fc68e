package crawler

import "errors"

// Error classes the orchestrator distinguishes. Everything except
// ErrSetup is recoverable: the current unit is logged and skipped.
var (
	// ErrSetup means the run cannot proceed at all (browser launch,
	// root listing unreachable). It is the only class that aborts.
	ErrSetup = errors.New("setup failed")

	// ErrNavigation covers page load and network failures.
	ErrNavigation = errors.New("navigation failed")

	// ErrExtraction covers unexpected document shapes while pulling
	// fields out of a loaded article.
	ErrExtraction = errors.New("extraction failed")

	// ErrMalformedURL means a URL does not follow the expected
	// places-to-go path convention.
	ErrMalformedURL = errors.New("malformed article url")
)
