package upsert

import "errors"

// ErrCompositionUnknown is returned when an operation needs a composition's
// base stats and no stat record exists for it.
var ErrCompositionUnknown = errors.New("composition not found")
