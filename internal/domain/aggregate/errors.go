package aggregate

import "errors"

var (
	// ErrNoData is returned when no records survive the filters.
	ErrNoData = errors.New("no matching records")

	// ErrBadFilter is returned for a filter value outside its domain.
	ErrBadFilter = errors.New("invalid filter")
)
