package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a connector failure
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindRateLimited     ErrorKind = "rate_limited"
	KindAuth            ErrorKind = "auth_error"
	KindUpstream        ErrorKind = "upstream_error"
	KindInvalidResponse ErrorKind = "invalid_response"
)

// Error is a classified connector failure, scoped to a single call
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a connector error with a formatted message
func NewError(kind ErrorKind, provider, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying transport error
func WrapError(kind ErrorKind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf extracts the error kind, defaulting to upstream_error for
// unclassified failures
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUpstream
}

// Retryable reports whether a failure of this kind is worth one internal
// retry
func Retryable(kind ErrorKind) bool {
	return kind == KindRateLimited || kind == KindTimeout
}

// StatusKind maps an HTTP status code to an error kind
func StatusKind(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUpstream
	}
}

// TransportKind maps a transport-level error to an error kind
func TransportKind(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	return KindUpstream
}
