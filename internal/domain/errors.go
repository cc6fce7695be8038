package domain

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure so the UI can react without inspecting
// transport details.
type Kind uint8

const (
	// KindUnknown is never produced by the gateway; it marks a zero Error.
	KindUnknown Kind = iota
	// KindAuthenticationRejected means the backend refused the credentials.
	KindAuthenticationRejected
	// KindAccountDisabled means the account exists but may not sign in.
	KindAccountDisabled
	// KindServiceUnavailable means the backend failed on its side.
	KindServiceUnavailable
	// KindConnectivityFailure means no response was received.
	KindConnectivityFailure
	// KindAuthorizationExpired means a previously valid session was rejected.
	KindAuthorizationExpired
	// KindNotFound means the target of a request does not exist.
	KindNotFound
	// KindValidationFailed means the payload was rejected, locally or remotely.
	KindValidationFailed
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRejected:
		return "authentication rejected"
	case KindAccountDisabled:
		return "account disabled"
	case KindServiceUnavailable:
		return "service unavailable"
	case KindConnectivityFailure:
		return "connectivity failure"
	case KindAuthorizationExpired:
		return "authorization expired"
	case KindNotFound:
		return "not found"
	case KindValidationFailed:
		return "validation failed"
	default:
		return "unknown error"
	}
}

// Error is the categorized failure returned by every remote operation.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so the sentinels below work with
// errors.Is regardless of Op, Status or cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrAuthenticationRejected = &Error{Kind: KindAuthenticationRejected}
	ErrAccountDisabled        = &Error{Kind: KindAccountDisabled}
	ErrServiceUnavailable     = &Error{Kind: KindServiceUnavailable}
	ErrConnectivityFailure    = &Error{Kind: KindConnectivityFailure}
	ErrAuthorizationExpired   = &Error{Kind: KindAuthorizationExpired}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrValidationFailed       = &Error{Kind: KindValidationFailed}
)

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Invalid builds a local validation failure.
func Invalid(op, format string, args ...any) error {
	return &Error{Kind: KindValidationFailed, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Description returns a sentence suitable for showing to the user.
func Description(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong. Please try again."
	}
	switch e.Kind {
	case KindAuthenticationRejected:
		return "Invalid username or password."
	case KindAccountDisabled:
		return "This account has been disabled. Contact an administrator."
	case KindServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	case KindConnectivityFailure:
		return "Unable to reach the server. Check your connection."
	case KindAuthorizationExpired:
		return "Your session has expired. Please sign in again."
	case KindNotFound:
		return "The requested item no longer exists."
	case KindValidationFailed:
		if e.Detail != "" {
			return "Please check the form: " + e.Detail + "."
		}
		return "Please check the form and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
