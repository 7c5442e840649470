package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// ticket, rider, segment or station does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. malformed departure time, blank station name).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation is not allowed in the entity's
// current state, such as a third tap on a completed journey or confirming a
// payment that is no longer pending.
// Handlers should map this to HTTP 409 Conflict.
var ErrConflict = errors.New("conflict")
