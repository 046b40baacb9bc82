package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	// ErrCodeValidation marks a local pre-flight failure. It is produced
	// before any network call and is always actionable by the user.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeSubmission marks a failed mutating request against the remote
	// task store: remote validation, conflict, authorization or network.
	ErrCodeSubmission ErrorCode = "SUBMISSION"
	// ErrCodeLoad marks a failed read request. Loads degrade to empty
	// results, never to a fatal error.
	ErrCodeLoad ErrorCode = "LOAD"

	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError reports a pre-flight check failure with a user-facing message.
func NewValidationError(message string) *Error {
	return NewError(ErrCodeValidation, message)
}

// NewSubmissionError classifies a failed write against the remote store.
// The message is either the store-provided detail or a generic fallback.
func NewSubmissionError(message string, err error) *Error {
	return &Error{Code: ErrCodeSubmission, Message: message, Err: err}
}

// NewLoadError classifies a failed read against the remote store.
func NewLoadError(message string, err error) *Error {
	return &Error{Code: ErrCodeLoad, Message: message, Err: err}
}

// Common domain errors.
var (
	ErrSessionNotFound = NewError(ErrCodeNotFound, "session not found")
	ErrFormNotFound    = NewError(ErrCodeNotFound, "form not found")
	ErrInviteNotFound  = NewError(ErrCodeNotFound, "invite not found")
	ErrUnauthorized    = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload  = NewError(ErrCodeValidation, "invalid payload")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
