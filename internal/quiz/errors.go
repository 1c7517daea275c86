package quiz

import "errors"

var (
	// ErrValidation marks malformed or missing input fields.
	ErrValidation = errors.New("invalid input")
	// ErrUnauthenticated is returned when an operation needs a signed-in caller.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the quiz exists but belongs to someone else.
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound is returned when no quiz matches the requested id.
	ErrNotFound = errors.New("quiz not found")
)
