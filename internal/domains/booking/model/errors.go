package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeValidation        = "BKG001"
	ErrCodeConflict          = "BKG002"
	ErrCodePersistence       = "BKG003"
	ErrCodeTimeout           = "BKG004"
	ErrCodeNotification      = "BKG005"
	ErrCodeNotFound          = "BKG006"
	ErrCodeInvalidTransition = "BKG007"
)

// Errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("time slot is not available")
	ErrPersistence       = errors.New("booking store unavailable")
	ErrNotification      = errors.New("notification dispatch failed")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// BookingError custom error type
type BookingError struct {
	Code    string
	Message string
	Err     error

	// Conflict is set for ErrConflict: the unavailable interval that was hit.
	Conflict *UnavailableInterval
	// Details carries per-field validation messages.
	Details map[string]string

	cause error
}

func (e *BookingError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap lets errors.Is match the sentinel and the underlying cause.
func (e *BookingError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// Error constructors
func NewValidationError(message string, details map[string]string) *BookingError {
	return &BookingError{
		Code:    ErrCodeValidation,
		Message: message,
		Err:     ErrValidation,
		Details: details,
	}
}

func NewConflictError(conflict UnavailableInterval) *BookingError {
	return &BookingError{
		Code: ErrCodeConflict,
		Message: fmt.Sprintf("Requested time overlaps an existing %s (%s-%s)",
			conflict.Type, conflict.Start, conflict.End),
		Err:      ErrConflict,
		Conflict: &conflict,
	}
}

// NewDuplicateError reports a lost create race that the caller may retry.
func NewDuplicateError(message string, cause error) *BookingError {
	return &BookingError{
		Code:    ErrCodeConflict,
		Message: message,
		Err:     ErrConflict,
		cause:   cause,
	}
}

// NewPersistenceError wraps a storage failure. Deadline expiry gets its own code.
func NewPersistenceError(op string, cause error) *BookingError {
	if errors.Is(cause, context.DeadlineExceeded) {
		return &BookingError{
			Code:    ErrCodeTimeout,
			Message: fmt.Sprintf("%s timed out", op),
			Err:     ErrPersistence,
			cause:   cause,
		}
	}
	return &BookingError{
		Code:    ErrCodePersistence,
		Message: fmt.Sprintf("%s failed", op),
		Err:     ErrPersistence,
		cause:   cause,
	}
}

func NewNotificationError(cause error) *BookingError {
	return &BookingError{
		Code:    ErrCodeNotification,
		Message: "Failed to dispatch booking notification",
		Err:     ErrNotification,
		cause:   cause,
	}
}

func NewNotFoundError(what string) *BookingError {
	return &BookingError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", what),
		Err:     ErrNotFound,
	}
}

func NewInvalidTransitionError(from, to BookingStatus) *BookingError {
	return &BookingError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("Cannot change booking status from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

// AsPersistence keeps typed booking errors and wraps anything else.
func AsPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BookingError
	if errors.As(err, &be) {
		return err
	}
	return NewPersistenceError(op, err)
}

// GetErrorResponse maps an error to (status, public message, code).
// Storage causes are never included in the message.
func GetErrorResponse(err error) (int, string, string) {
	var be *BookingError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError, "Internal server error", "SYS_001"
	}

	switch {
	case errors.Is(be.Err, ErrValidation):
		return http.StatusBadRequest, be.Message, be.Code
	case errors.Is(be.Err, ErrConflict):
		return http.StatusConflict, be.Message, be.Code
	case errors.Is(be.Err, ErrInvalidTransition):
		return http.StatusConflict, be.Message, be.Code
	case errors.Is(be.Err, ErrNotFound):
		return http.StatusNotFound, be.Message, be.Code
	case errors.Is(be.Err, ErrPersistence):
		if be.Code == ErrCodeTimeout {
			return http.StatusServiceUnavailable, "The booking system is busy, please try again", be.Code
		}
		return http.StatusServiceUnavailable, "The booking system is temporarily unavailable, please try again", be.Code
	default:
		return http.StatusInternalServerError, "Internal server error", be.Code
	}
}
