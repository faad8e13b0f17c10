package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	StatusOK                  = 200
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTimeout      = 408
	StatusConflict            = 409
	StatusTooManyRequests     = 429
	StatusInternalServerError = 500
	StatusBadGateway          = 502
	StatusServiceUnavailable  = 503
)

const (
	ErrorTypeInvalidRequest      = "INVALID_REQUEST"
	ErrorTypeNotFound            = "NOT_FOUND"
	ErrorTypeConflict            = "CONFLICT"
	ErrorTypeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrorTypeUpstream            = "UPSTREAM_ERROR"
	ErrorTypeUnavailable         = "SERVICE_UNAVAILABLE"
	ErrorTypeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorTypeUnknown             = "UNKNOWN_ERROR"
)

// AppError carries a type that maps to an HTTP status and a message that is
// safe to show to visitors. Err holds the internal cause for logs.
type AppError struct {
	Type    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(errType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func NewInvalidRequestError(message string, err error) *AppError {
	return NewAppError(ErrorTypeInvalidRequest, message, err)
}

func NewNotFoundError(message string, err error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, err)
}

func NewConflictError(message string, err error) *AppError {
	return NewAppError(ErrorTypeConflict, message, err)
}

// NewUpstreamError reports a failure returned by a service this application depends on.
func NewUpstreamError(message string, err error) *AppError {
	return NewAppError(ErrorTypeUpstream, message, err)
}

// NewUnavailableError reports a dependency that is missing altogether.
func NewUnavailableError(message string, err error) *AppError {
	return NewAppError(ErrorTypeUnavailable, message, err)
}

func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(ErrorTypeInternalServerError, message, err)
}

func GetErrorType(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}

	return ErrorTypeUnknown
}

var duplicateKeyMessages = []string{
	"duplicate key",
	"unique constraint",
	"duplicated key",
}

// IsDuplicateKeyError recognises unique violations from drivers that do not
// translate them, by message.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if GetErrorType(err) == ErrorTypeConflict {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range duplicateKeyMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
