package provider

import "errors"

var (
	// ErrCycleInProgress is returned when Update is called while a cycle is
	// already running.
	ErrCycleInProgress = errors.New("provider: update cycle already in progress")
	// ErrTerminated is returned by Update after Terminate.
	ErrTerminated = errors.New("provider: terminated")
	// ErrEnrichmentPanic wraps a panic raised by an enrichment stage.
	ErrEnrichmentPanic = errors.New("provider: enrichment panicked")
)
