package domain

import "errors"

// Error kinds shared by the stores. Wrap them with github.com/pkg/errors to
// attach detail and classify with errors.Is.
var (
	// ErrNotFound an id or key that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTooLarge a blob over the size ceiling.
	ErrTooLarge = errors.New("payload too large")

	// ErrInvalidInput a missing required field, malformed CSV header, negative price.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackingStoreUnavailable the key-value primitive could not be reached.
	ErrBackingStoreUnavailable = errors.New("backing store unavailable")

	// ErrCorrupt a stored value that cannot be decoded.
	ErrCorrupt = errors.New("stored value corrupt")
)
