package core

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state transition")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden operation")

	// ErrProviderUnavailable marks a transport-level failure talking to an
	// external insurer. It never crosses the aggregator boundary: the
	// affected provider's contribution degrades to an empty set instead.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRatingFailure marks an unexpected error while pricing a single
	// tier. Sibling tiers are not affected.
	ErrRatingFailure = errors.New("rating failure")
)
