package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// UnknownKindError is returned when a component kind is not registered.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown component kind %q", string(e.Kind))
}

// NotFoundError is returned when an operation references a missing id.
type NotFoundError struct {
	Resource string // "component", "project", ...
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError reports user input that was rejected before any work was done.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a ValidationError or UnknownKindError.
// Both are caused by bad input rather than by the system.
func IsValidation(err error) bool {
	var ve *ValidationError
	var ke *UnknownKindError
	return errors.As(err, &ve) || errors.As(err, &ke)
}
