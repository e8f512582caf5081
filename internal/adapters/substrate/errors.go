package substrate

import "errors"

// Sentinel kinds for substrate errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidLimit = errors.New("invalid scan limit")
)
