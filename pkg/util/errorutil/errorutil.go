package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the client.
const (
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeRejected        = "REJECTED"
	CodeNetwork         = "NETWORK_FAILURE"
	CodeFlowState       = "FLOW_STATE"
	CodeInternal        = "INTERNAL_ERROR"

	// Used by the development ticket service.
	CodeNotFound  = "NOT_FOUND"
	CodeForbidden = "FORBIDDEN"
)

// DomainError standardizes client errors. HTTPStatus and Body carry the
// upstream response when one was received.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Body       string
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.HTTPStatus)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, details)
}

func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, nil)
}

// NewRejected records a non-success HTTP response. The body is kept for
// diagnostics only.
func NewRejected(status int, body string) error {
	return &DomainError{
		Code:       CodeRejected,
		Message:    "request rejected",
		HTTPStatus: status,
		Body:       body,
	}
}

// NewNetworkFailure wraps a transport level error.
func NewNetworkFailure(err error) error {
	return &DomainError{
		Code:    CodeNetwork,
		Message: "network failure",
		Err:     err,
	}
}

// NewNetworkFailureStatus is used where an unexpected status is folded into
// the connectivity bucket (ticket listing).
func NewNetworkFailureStatus(status int, body string) error {
	return &DomainError{
		Code:       CodeNetwork,
		Message:    "unexpected " + http.StatusText(status),
		HTTPStatus: status,
		Body:       body,
	}
}

func NewFlowState(message string) error {
	return NewDomainError(CodeFlowState, message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError. Context errors are
// reported as network failures since they surface from the transport.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if de, ok := NewNetworkFailure(err).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}

// NewStatusError builds an error that a server handler answers with status.
func NewStatusError(status int, code, message string) error {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

// StatusOf returns the HTTP status a server should answer err with.
func StatusOf(err error) int {
	de := ToDomainError(err)
	if de == nil {
		return http.StatusOK
	}
	if de.HTTPStatus != 0 {
		return de.HTTPStatus
	}
	switch de.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
