package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	ErrCodeInvalidCredentials = "ADM001"
	ErrCodeTooManyAttempts    = "ADM002"
	ErrCodeSessionInvalid     = "ADM003"
	ErrCodeInvalidRequest     = "ADM004"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid admin password")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrSessionInvalid     = errors.New("admin session is invalid or expired")
	ErrInvalidRequest     = errors.New("invalid admin request")
)

// AdminError custom error type
type AdminError struct {
	Code    string
	Message string
	Err     error
}

func (e *AdminError) Error() string {
	return e.Message
}

func (e *AdminError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewInvalidCredentialsError() *AdminError {
	return &AdminError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid password",
		Err:     ErrInvalidCredentials,
	}
}

func NewTooManyAttemptsError(retryAfterMinutes int) *AdminError {
	return &AdminError{
		Code:    ErrCodeTooManyAttempts,
		Message: fmt.Sprintf("Too many failed login attempts, try again in %d minutes", retryAfterMinutes),
		Err:     ErrTooManyAttempts,
	}
}

func NewSessionInvalidError() *AdminError {
	return &AdminError{
		Code:    ErrCodeSessionInvalid,
		Message: "Admin session is invalid or expired",
		Err:     ErrSessionInvalid,
	}
}

func NewInvalidRequestError(message string) *AdminError {
	return &AdminError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
		Err:     ErrInvalidRequest,
	}
}

// GetErrorResponse maps admin errors to (status, message, code).
// ok is false for errors that are not admin errors.
func GetErrorResponse(err error) (status int, message, code string, ok bool) {
	var ae *AdminError
	if !errors.As(err, &ae) {
		return 0, "", "", false
	}
	switch {
	case errors.Is(ae.Err, ErrInvalidCredentials), errors.Is(ae.Err, ErrSessionInvalid):
		return http.StatusUnauthorized, ae.Message, ae.Code, true
	case errors.Is(ae.Err, ErrTooManyAttempts):
		return http.StatusTooManyRequests, ae.Message, ae.Code, true
	case errors.Is(ae.Err, ErrInvalidRequest):
		return http.StatusBadRequest, ae.Message, ae.Code, true
	}
	return http.StatusInternalServerError, "Internal server error", ae.Code, true
}
