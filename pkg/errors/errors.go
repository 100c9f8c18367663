package pulse_errors

import "errors"

// Error taxonomy shared by every layer. Aggregates and services wrap these
// with %w so callers can classify with errors.Is while keeping rule detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrTooLarge     = errors.New("file too large")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnavailable  = errors.New("service unavailable")
)

// IsRetryable reports whether the caller may usefully retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRateLimited)
}
