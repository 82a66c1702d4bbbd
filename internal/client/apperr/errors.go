// Package apperr is the error vocabulary of the client core. Every failure
// the gateway, session manager or registration flow reports is an *Error
// carrying one Kind; raw transport errors never cross this boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a client-side pre-flight check that never reached the network.
	KindValidation
	// KindUnauthorized is an HTTP 401/403: the credential was rejected.
	KindUnauthorized
	// KindServerRejected is a 4xx business-rule failure with a server message.
	KindServerRejected
	// KindNetworkUnavailable means no connection could be established.
	KindNetworkUnavailable
	// KindTimeout means the call exceeded its deadline.
	KindTimeout
	// KindServerError is an unexpected 5xx or an unreadable success response.
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindServerRejected:
		return "server_rejected"
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindTimeout:
		return "timeout"
	case KindServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Status is the HTTP status when one was received.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation         = &Error{Kind: KindValidation}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized}
	ErrServerRejected     = &Error{Kind: KindServerRejected}
	ErrNetworkUnavailable = &Error{Kind: KindNetworkUnavailable}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrServerError        = &Error{Kind: KindServerError}
)

// New builds an *Error without an HTTP status.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a KindValidation error with a user-facing message.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage renders err for display. Server-supplied and validation
// messages are shown verbatim; transport kinds get a generic phrase when
// no message was attached.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong. Please try again."
	}
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUnauthorized:
		return "Your session is no longer valid. Please log in again."
	case KindNetworkUnavailable:
		return "Cannot connect to the backend server."
	case KindTimeout:
		return "Request timeout. Please check if the backend server is running."
	case KindServerError:
		return "The server failed to process the request."
	default:
		return "Something went wrong. Please try again."
	}
}
