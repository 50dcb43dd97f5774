package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced entity no longer exists, e.g. it was
	// deleted by an admin while a user was working with it.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated means a write was attempted with no signed-in user.
	// Read paths treat the anonymous case as an empty result instead.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// TransientError wraps a backend or network failure that the caller may
// retry. The quiz session machine reverts to its pre-call state whenever one
// of these surfaces.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient backend failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable backend failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
