package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store functions when the requested document
// does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrSourceNotFound is returned by a simple-move transfer when there is no
// record at the source date key. It wraps ErrNotFound.
var ErrSourceNotFound = fmt.Errorf("source %w", ErrNotFound)

// ErrInvalidKey is returned when a date key is not a valid zero-padded
// YYYY-MM-DD calendar date. Handlers should map this to HTTP 400.
var ErrInvalidKey = errors.New("invalid key")

// ErrValidation is returned by service functions when a record's shape is
// inconsistent with its kind (e.g. a shift without a shift type).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrStoreUnavailable wraps any failure reported by the document store backend.
// Handlers should map this to HTTP 503.
var ErrStoreUnavailable = errors.New("store unavailable")
