package backend

import (
	"errors"
	"fmt"
	"strings"
)

// UniqueViolationCode is the SQL state a store reports for a duplicate key.
const UniqueViolationCode = "23505"

// Error is a failure reported by the data service itself.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %s (status %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError covers everything that kept a request from producing a
// well-formed backend answer: network failures, timeouts, unreadable bodies
// and an open circuit.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a backend uniqueness violation.
func IsDuplicate(err error) bool {
	var backendErr *Error
	if !errors.As(err, &backendErr) {
		return false
	}

	if backendErr.Code == UniqueViolationCode {
		return true
	}

	return strings.Contains(backendErr.Message, "SQLSTATE "+UniqueViolationCode)
}

func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// countsAsFailure decides whether the circuit breaker should see err.
// Business errors such as duplicates say nothing about service health.
func countsAsFailure(err error) bool {
	if err == nil {
		return false
	}

	if IsTransport(err) {
		return true
	}

	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.StatusCode >= 500
	}

	return true
}
