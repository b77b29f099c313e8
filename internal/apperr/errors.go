// Package apperr defines the error taxonomy shared by every search family.
//
// Store failures, validation failures and unsupported operations are all
// *Error values distinguished by Code, so callers decide the outcome with
// the IsXxx predicates regardless of how deeply the error was wrapped.
// An unsatisfiable filter is not an error: it is a flag on the resolution
// and maps to the no-results outcome.
package apperr

import (
	"errors"
	"fmt"
)

// Code categorizes application errors.
type Code string

const (
	// CodeValidation indicates a caller-supplied value or reference is invalid:
	// a malformed IRI, a negative page, an unknown variable.
	CodeValidation Code = "VALIDATION"

	// CodeNotFound indicates a directly addressed entity does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeStoreFailure indicates a backing store was unreachable, rejected a
	// query or returned inconsistent results.
	CodeStoreFailure Code = "STORE_FAILURE"

	// CodeUnsupported indicates the operation is not implemented for the
	// entity family.
	CodeUnsupported Code = "UNSUPPORTED"

	// CodeMaterialization indicates a result row lacked a required binding.
	CodeMaterialization Code = "MATERIALIZATION"
)

// Error is the structured application error.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Entity names the entity involved (URI or family), when known.
	Entity string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Entity != "" {
		msg += fmt.Sprintf(" (%s)", e.Entity)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a validation error about entity.
func Validation(entity, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...), Entity: entity}
}

// NotFound creates a not-found error for entity.
func NotFound(entity, format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...), Entity: entity}
}

// StoreFailure wraps err as a store failure during op.
func StoreFailure(op string, err error) *Error {
	return &Error{Code: CodeStoreFailure, Message: op, Err: err}
}

// Unsupported creates the error returned by mutations a family does not
// implement.
func Unsupported(family, op string) *Error {
	return &Error{Code: CodeUnsupported, Message: op + " is not supported", Entity: family}
}

// MissingBinding creates the materialization error for a row that lacks a
// required binding.
func MissingBinding(entity, binding string) *Error {
	return &Error{
		Code:    CodeMaterialization,
		Message: fmt.Sprintf("required binding ?%s is absent", binding),
		Entity:  entity,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" when
// there is none.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// IsValidation returns true if err is a validation error.
// Uses errors.As to handle wrapped errors.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsNotFound returns true if err is a not-found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsStoreFailure returns true if err is a store failure.
func IsStoreFailure(err error) bool {
	return CodeOf(err) == CodeStoreFailure
}

// IsUnsupported returns true if err reports an unsupported operation.
func IsUnsupported(err error) bool {
	return CodeOf(err) == CodeUnsupported
}

// IsMaterialization returns true if err is a materialization error.
func IsMaterialization(err error) bool {
	return CodeOf(err) == CodeMaterialization
}
