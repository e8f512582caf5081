package ledger

import "errors"

// ErrEventNotFound is returned when no ledger event carries the name.
var ErrEventNotFound = errors.New("event not found")
