package remote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/biaslens/internal/model"
)

// FallbackRejectionMessage is used when a non-2xx response carries no usable error body
const FallbackRejectionMessage = "Failed to analyze text"

// ErrorKind classifies a failed submission
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"       // Empty input, caught before any I/O
	KindRemoteRejection ErrorKind = "remote_rejection" // Non-2xx status
	KindTransport       ErrorKind = "transport"        // Connectivity or decode failure
	KindUnknown         ErrorKind = "unknown"          // No usable description
)

// Error is returned by Client.Analyze for every failure
type Error struct {
	Kind       ErrorKind
	StatusCode int    // Set for KindRemoteRejection
	Message    string // User-facing description
	Err        error  // Underlying cause, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message resolves the user-facing description of err.
// Errors without a description resolve to the generic unknown-error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return model.MessageUnknownError
	}
	return msg
}

// KindOf classifies err; errors not produced by this package are unknown
func KindOf(err error) ErrorKind {
	var rerr *Error
	if errors.As(err, &rerr) {
		if rerr.Error() == "" {
			return KindUnknown
		}
		return rerr.Kind
	}
	return KindUnknown
}

func rejection(status int, message string) *Error {
	return &Error{
		Kind:       KindRemoteRejection,
		StatusCode: status,
		Message:    message,
	}
}

func transport(format string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf(format, err),
		Err:     err,
	}
}
