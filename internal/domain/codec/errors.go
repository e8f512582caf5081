package codec

import "errors"

// Sentinel kinds for codec errors.
var (
	ErrWrongKind = errors.New("envelope is not of the expected record kind")
	ErrBadNumber = errors.New("required numeric field failed to parse")
)
