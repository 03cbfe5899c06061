// Package apperr classifies errors so the HTTP layer can map them to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// NewBadRequest creates an error representing invalid or missing input.
func NewBadRequest(format string, a ...any) error {
	return badRequest{fmt.Errorf(format, a...)}
}

type badRequest struct{ error }

func (e badRequest) Unwrap() error { return e.error }

// IsBadRequest returns true if err is, or wraps, a bad request error.
func IsBadRequest(err error) bool {
	var e badRequest
	return errors.As(err, &e)
}

// NewNotFound creates an error representing a resource that could not be found.
func NewNotFound(format string, a ...any) error {
	return notFound{fmt.Errorf(format, a...)}
}

type notFound struct{ error }

func (e notFound) Unwrap() error { return e.error }

// IsNotFound returns true if err is, or wraps, a not found error.
func IsNotFound(err error) bool {
	var e notFound
	return errors.As(err, &e)
}
