package db

import "errors"

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// StateConflictError is returned when an operation-state transition is
// attempted from a current state that is not in the qualified set.
type StateConflictError struct {
	Account string
	Message string
}

func (e *StateConflictError) Error() string {
	return e.Message
}

func IsStateConflictError(err error) bool {
	var target *StateConflictError
	return errors.As(err, &target)
}
