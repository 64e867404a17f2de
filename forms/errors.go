package forms

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Form operations.
var (
	// ErrIncomplete is returned by Finish while a required visible field
	// is still unanswered.
	ErrIncomplete = errors.New("form is not complete")

	// ErrResolved is returned by interactions against a form whose outcome
	// has already been decided.
	ErrResolved = errors.New("form already resolved")

	// ErrNoSuchField is returned by GoTo for an unknown or hidden field name.
	ErrNoSuchField = errors.New("no such field")

	// ErrBusy is returned when an interaction arrives while another one is
	// still in flight for the same form.
	ErrBusy = errors.New("interaction already in flight")

	// ErrStarted is returned by Start on a form that is already running.
	ErrStarted = errors.New("form already started")

	// ErrNotStarted is returned by interactions against a form that has not
	// been started.
	ErrNotStarted = errors.New("form not started")

	// ErrTooManyOptions is returned when a select is built with more
	// options than one control set can carry.
	ErrTooManyOptions = errors.New("too many options")
)

// ValidationError describes the constraint a submitted value violated.
// Format and Args are kept separate so the message can be rendered
// through the form's translator at the point it is surfaced.
type ValidationError struct {
	Format string
	Args   []any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Format: format, Args: args}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConstructionError reports a caller contract violation while assembling a
// form or a field (duplicate names, impossible bounds, oversized option
// sets). It is raised eagerly and is not recoverable at runtime.
type ConstructionError struct {
	Detail string
}

func (e *ConstructionError) Error() string { return "form construction: " + e.Detail }

func construction(format string, args ...any) *ConstructionError {
	return &ConstructionError{Detail: fmt.Sprintf(format, args...)}
}
