package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors carry their own codes
// (NOT_FOUND, INSUFFICIENT_STOCK, ...) which pass through unchanged.
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps domain error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule violations -> 422 Unprocessable Entity
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":         http.StatusUnprocessableEntity,
	"UNRESOLVED_UNIT_CONVERSION": http.StatusUnprocessableEntity,
	"NO_ITEMS":                   http.StatusUnprocessableEntity,

	// Malformed or out-of-range input -> 400 Bad Request
	"INVALID_INPUT": http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code. Unmapped
// INVALID_* codes come from domain constructors rejecting input and map to
// 400; anything else unknown is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
