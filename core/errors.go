package core

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	// ErrInvalidCredentials is a 401 on the login endpoint itself.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAuthenticationFailed is a 401 with no valid or renewable token.
	// It forces session teardown.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrInsufficientPrivilege is a 403; it is never retried.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")
	// ErrEmailAlreadyRegistered is a 409 on the register endpoint.
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrNoRefreshToken         = errors.New("no refresh token available")
)

// Config errors (client construction)
var (
	ErrBaseURLRequired = errors.New("base URL is required")
	ErrInvalidBaseURL  = errors.New("base URL is not a valid absolute URL")
)

// genericServerMessage is the user-facing fallback when the server gives
// no message of its own.
const genericServerMessage = "an unexpected error occurred"

// APIError is a non-2xx response from the backend. A 401 unwraps to
// ErrAuthenticationFailed and a 403 to ErrInsufficientPrivilege so callers
// can branch with errors.Is; anything else is a plain network-or-server
// failure carrying the server-provided message when there is one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = genericServerMessage
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, msg)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrAuthenticationFailed
	case 403:
		return ErrInsufficientPrivilege
	}
	return nil
}

// ValidationError is a local, non-network rejection of a cart mutation.
// The cart is left unchanged when one is returned.
type ValidationError struct {
	Message        string
	AvailableStock int // last-known stock figure for quantity failures
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewStockError reports a requested quantity exceeding the last-known
// stock attached to the line. The check is advisory client-side state,
// not a server-enforced lock.
func NewStockError(requested, available int) *ValidationError {
	return &ValidationError{
		Message:        fmt.Sprintf("requested quantity %d exceeds available stock %d", requested, available),
		AvailableStock: available,
	}
}
