// Package apperrors holds the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrProcessing = errors.New("processing error")
)

// Error is a classified error. Message is safe to return to API clients.
type Error struct {
	kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.Cause}
}

func Validation(format string, args ...any) error {
	return &Error{kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// Processing wraps cause. The cause text is appended to the message so that
// callers of process-task see what the collaborator reported.
func Processing(cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return &Error{kind: ErrProcessing, Message: msg, Cause: cause}
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsProcessing(err error) bool { return errors.Is(err, ErrProcessing) }

// Message returns the client-facing text of a classified error and false for
// anything unclassified.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
