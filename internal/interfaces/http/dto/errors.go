package dto

import (
	"net/http"

	"github.com/erp/ledgercore/internal/domain/shared"
)

// Transport-level codes. Domain failures keep the code of their DomainError.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,

	shared.CodeInvalidInput: http.StatusBadRequest,
	shared.CodeNotFound:     http.StatusNotFound,

	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeDuplicateSubmission: http.StatusConflict,

	shared.CodeInvalidState:      http.StatusUnprocessableEntity,
	shared.CodeInsufficientStock: http.StatusUnprocessableEntity,
	shared.CodeSerialUnavailable: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the status for an error code.
// Unknown codes starting with INVALID_ are treated as input errors, anything else as 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if len(code) > len("INVALID_") && code[:len("INVALID_")] == "INVALID_" {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
