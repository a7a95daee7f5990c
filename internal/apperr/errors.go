// Package apperr defines the error kinds the request engine returns, so the
// HTTP layer can map them to status codes without string matching.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

// NotFound builds a NotFoundError for the named entity.
func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// DuplicateNameError indicates a name uniqueness violation.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q already exists", e.Name)
}

// ConflictError indicates a delete blocked by existing dependents.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// ForbiddenError indicates the actor lacks access to the target request.
// The message is deliberately terse so it leaks nothing about the record.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string {
	return "access denied"
}

// NotEditableError indicates a mutation attempted on a terminal-state request.
type NotEditableError struct {
	Status string
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("request in status %s can no longer be modified", e.Status)
}

// FieldViolation is one field-level validation failure.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every field violation of one submission, so the
// caller can surface all problems at once instead of the first one only.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StorageError wraps a transactional or infrastructure failure. Always fatal
// for the operation, never silently retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure during " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it already carries a domain kind.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	var dup *DuplicateNameError
	var conflict *ConflictError
	var forbidden *ForbiddenError
	var notEditable *NotEditableError
	var validation *ValidationError
	if errors.As(err, &nf) || errors.As(err, &dup) || errors.As(err, &conflict) ||
		errors.As(err, &forbidden) || errors.As(err, &notEditable) || errors.As(err, &validation) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
