package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, ErrNotFound) matches a NOT_FOUND error with a specific message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared across bounded contexts
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeSerialUnavailable   = "SERIAL_UNAVAILABLE"
	CodeDuplicateSubmission = "DUPLICATE_SUBMISSION"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrSerialUnavailable   = NewDomainError(CodeSerialUnavailable, "Serial number not available")
	ErrDuplicateSubmission = NewDomainError(CodeDuplicateSubmission, "Request was already submitted")
)

// NewValidationError creates an INVALID_INPUT error with a specific message.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// NewNotFoundError creates a NOT_FOUND error with a specific message.
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewInvalidStateError creates an INVALID_STATE error with a specific message.
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}
