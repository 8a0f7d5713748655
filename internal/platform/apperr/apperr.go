// Package apperr defines the error taxonomy shared by every HTTP-facing
// service and the single table that maps each kind to a status code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicate
	KindReferenceNotFound
	KindNotFound
	KindUnauthorized
	KindForbidden
)

var kindNames = map[Kind]string{
	KindInternal:          "internal_error",
	KindValidation:        "validation_error",
	KindDuplicate:         "duplicate_field",
	KindReferenceNotFound: "reference_not_found",
	KindNotFound:          "not_found",
	KindUnauthorized:      "unauthorized",
	KindForbidden:         "forbidden",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// statusByKind is read-only after package initialisation.
var statusByKind = map[Kind]int{
	KindInternal:          http.StatusInternalServerError,
	KindValidation:        http.StatusBadRequest,
	KindDuplicate:         http.StatusBadRequest,
	KindReferenceNotFound: http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindUnauthorized:      http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
}

// Status returns the HTTP status code for a kind.
func (k Kind) Status() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is implemented by every typed error in this package.
type Error interface {
	error
	Kind() Kind
}

// FieldValidationError reports a field that failed a syntax rule.
type FieldValidationError struct {
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FieldValidationError) Kind() Kind { return KindValidation }

// DuplicateFieldError reports a unique field that is already taken.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateFieldError) Kind() Kind { return KindDuplicate }

// ReferenceNotFoundError reports an id that does not exist in a reference set.
type ReferenceNotFoundError struct {
	Ref string
	ID  string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s does not exist", e.Ref, e.ID)
}

func (e *ReferenceNotFoundError) Kind() Kind { return KindReferenceNotFound }

// NotFoundError reports a missing resource addressed directly by the caller.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }

// UnauthorizedError is returned for bad credentials or tokens.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

func (e *UnauthorizedError) Kind() Kind { return KindUnauthorized }

// ForbiddenError is returned when an authenticated caller may not act on a
// resource.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

func (e *ForbiddenError) Kind() Kind { return KindForbidden }

// StorageError wraps a database failure. Its message is logged but never
// returned to clients.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Kind() Kind { return KindInternal }

// Storage wraps err as a StorageError. A nil err yields nil; errors that
// already carry a kind pass through unchanged.
func Storage(msg string, err error) error {
	if err == nil {
		return nil
	}
	var typed Error
	if errors.As(err, &typed) {
		return err
	}
	return &StorageError{Message: msg, Err: err}
}

// KindOf returns the kind of the first typed error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var typed Error
	if errors.As(err, &typed) {
		return typed.Kind()
	}
	return KindInternal
}

// StatusOf returns the HTTP status code for err.
func StatusOf(err error) int {
	return KindOf(err).Status()
}

// codeByStatus names transport-level statuses that have no Kind.
var codeByStatus = map[int]string{
	http.StatusMethodNotAllowed:      "method_not_allowed",
	http.StatusRequestEntityTooLarge: "payload_too_large",
	http.StatusUnsupportedMediaType:  "unsupported_media_type",
	http.StatusTooManyRequests:       "rate_limited",
	http.StatusServiceUnavailable:    "unavailable",
	http.StatusGatewayTimeout:        "timeout",
}

// CodeForStatus returns the token for the "error" field of a response with
// the given status, so echo errors and typed errors share one vocabulary.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindValidation.String()
	case http.StatusUnauthorized:
		return KindUnauthorized.String()
	case http.StatusForbidden:
		return KindForbidden.String()
	case http.StatusNotFound:
		return KindNotFound.String()
	}
	if code, ok := codeByStatus[status]; ok {
		return code
	}
	if status >= http.StatusInternalServerError {
		return KindInternal.String()
	}
	return "request_error"
}
