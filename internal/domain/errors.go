package domain

import "errors"

// Failure kinds returned by the rental core. Callers match them with errors.Is,
// every layer wraps them with its own prefix.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverRelease       = errors.New("release exceeds reserved quantity")
	ErrInvalidTransition = errors.New("invalid order transition")
	ErrInvalidDateRange  = errors.New("invalid date range")
	ErrTimeout           = errors.New("operation timed out")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)

// ErrConcurrentUpdate reports a lost optimistic-lock race; the caller may retry.
var ErrConcurrentUpdate = errors.New("concurrent update")
