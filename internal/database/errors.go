package database

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration means no connection string is available; never retried.
	ErrConfiguration = errors.New("database url is not configured")
	// ErrExhaustedRetries is matched by every *ExhaustedError.
	ErrExhaustedRetries = errors.New("database connection retries exhausted")
)

// ExhaustedError carries the final transient failure after the attempt bound was reached
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s after %d attempts: %v", ErrExhaustedRetries, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhaustedRetries, e.Last}
}
