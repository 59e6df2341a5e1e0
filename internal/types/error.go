package types

import (
	"fmt"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// InternalServiceError is the error code for internal service errors
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	// Unauthorized is returned when the caller is not allowed to perform the
	// call: wrong owner on admin operations, wrong asset contract on deposit
	// notifications, or a missing confirmation deposit.
	Unauthorized ErrorCode = "UNAUTHORIZED"
	// StateConflict is returned when the account's operation state is not
	// Idle where the call requires it. The caller may retry later.
	StateConflict ErrorCode = "STATE_CONFLICT"
	// PolicyViolation covers rejections by global policy: staking paused,
	// deposit not landing exactly on the required amount, lock duration not
	// elapsed, or a zero parameter value.
	PolicyViolation ErrorCode = "POLICY_VIOLATION"
	// NotFound is returned when no stake record exists for the account.
	NotFound ErrorCode = "NOT_FOUND"
	// ValidationError is the error code for malformed request payloads
	ValidationError ErrorCode = "VALIDATION_ERROR"
)

// Error wraps an underlying error with the HTTP status and error code the
// API surface should respond with.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, fmt.Errorf("%s", msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func NewUnauthorizedError(err error) *Error {
	return NewError(http.StatusForbidden, Unauthorized, err)
}

func NewStateConflictError(err error) *Error {
	return NewError(http.StatusConflict, StateConflict, err)
}

func NewPolicyViolationError(err error) *Error {
	return NewError(http.StatusUnprocessableEntity, PolicyViolation, err)
}

func NewNotFoundError(err error) *Error {
	return NewError(http.StatusNotFound, NotFound, err)
}

func NewValidationFailedError(err error) *Error {
	return NewError(http.StatusBadRequest, ValidationError, err)
}
