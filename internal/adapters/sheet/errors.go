package sheet

import "errors"

var (
	// ErrUnknownComposition is returned when the manifest has no entry
	// for the requested composition.
	ErrUnknownComposition = errors.New("composition not in manifest")

	// ErrNoRows is returned when the sheet holds no rows for the query.
	ErrNoRows = errors.New("no rows in sheet")
)
