package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrProjectionsUnavailable means no projection table could be fetched and
	// none was cached. Callers degrade to "no projection data".
	ErrProjectionsUnavailable = errors.New("projections unavailable")
)
