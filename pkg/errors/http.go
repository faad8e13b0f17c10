package errors

import (
	"errors"
)

const genericMessage = "An unexpected error occurred"

var statusByType = map[string]int{
	ErrorTypeInvalidRequest:      StatusBadRequest,
	ErrorTypeNotFound:            StatusNotFound,
	ErrorTypeConflict:            StatusConflict,
	ErrorTypeTooManyRequests:     StatusTooManyRequests,
	ErrorTypeUpstream:            StatusBadGateway,
	ErrorTypeUnavailable:         StatusServiceUnavailable,
	ErrorTypeInternalServerError: StatusInternalServerError,
}

// HTTPStatusCode maps err to a response status. Untyped errors are 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetHumanReadableMessage returns the visitor-facing message of an AppError
// and a generic message for anything else, so driver errors never leak.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return genericMessage
}
