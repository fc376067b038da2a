package errors

import (
	"errors"
	"fmt"
)

var (
	// Tokens
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token has expired")

	// Authorization header
	ErrEmptyAuthHeader   = errors.New("authorization header is missing")
	ErrInvalidAuthHeader = errors.New("authorization header is malformed")
	ErrUnauthorized      = errors.New("unauthorized")

	// Context
	ErrActorNotFoundInContext = errors.New("actor id not found in request context")

	// Common
	ErrNotFound   = errors.New("record not found")
	ErrBadRequest = errors.New("bad request")

	// Claim rejections. These are the contract of the accept path: the caller
	// has to be able to tell "you lost the race" from "try again" from "bad input".
	ErrAlreadyClaimed      = errors.New("already_claimed")
	ErrRequestExpired      = errors.New("expired")
	ErrTerminalState       = errors.New("terminal_state")
	ErrInvalidTransition   = errors.New("invalid_transition")
	ErrCounselorAtCapacity = errors.New("at_capacity")
	ErrNotBroadcasted      = errors.New("counselor was not broadcast this request")
	ErrRegionNotServed     = errors.New("counselor does not serve this region")
)

// HttpError carries the HTTP status a service error should surface with.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
