package domain

import "fmt"

// ValidationError covers malformed or missing input (400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ForbiddenError covers role or scope violations (403).
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

func NewForbiddenError(format string, args ...any) *ForbiddenError {
	return &ForbiddenError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError covers dangling references (404).
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

func NewNotFoundError(format string, args ...any) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

// DuplicateError covers uniqueness violations such as a second seasonal
// baseline or a team name collision (409).
type DuplicateError struct {
	Msg string
}

func (e *DuplicateError) Error() string { return e.Msg }

func NewDuplicateError(format string, args ...any) *DuplicateError {
	return &DuplicateError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError covers referential conflicts, e.g. deleting a team that
// still has members (409).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func NewConflictError(format string, args ...any) *ConflictError {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidTokenError covers unknown or already-consumed invite tokens (400).
type InvalidTokenError struct {
	Msg string
}

func (e *InvalidTokenError) Error() string { return e.Msg }

func NewInvalidTokenError(format string, args ...any) *InvalidTokenError {
	return &InvalidTokenError{Msg: fmt.Sprintf(format, args...)}
}
