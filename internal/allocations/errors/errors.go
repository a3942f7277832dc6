package errors

import "errors"

var (
	ErrNotFound = errors.New("allocation not found")

	ErrInvalidID = errors.New("invalid allocation ID format")

	// ErrLockHeld means another request currently holds the advisory lock
	// for the room's allocation timeline.
	ErrLockHeld = errors.New("allocation lock already held")
)
