// Package apierr defines the typed error taxonomy returned by the AMS client and
// the pure classification of transport and HTTP outcomes into it.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one class of API failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork means no response reached the client.
	KindNetwork
	// KindAuth means an auth endpoint rejected the credentials. The user must log in again.
	KindAuth
	// KindSessionExpired means the refresh attempt failed. The user must log in again.
	KindSessionExpired
	KindForbidden
	KindNotFound
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindSessionExpired:
		return "session_expired"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is.
var (
	ErrNetwork        = &Error{Kind: KindNetwork}
	ErrAuth           = &Error{Kind: KindAuth}
	ErrSessionExpired = &Error{Kind: KindSessionExpired}
	ErrForbidden      = &Error{Kind: KindForbidden}
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrServer         = &Error{Kind: KindServer}
	ErrUnknown        = &Error{Kind: KindUnknown}
)

// Error is the only error type the client returns to callers.
type Error struct {
	Kind Kind
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Detail is the server-provided message, if any.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

// Compile-time check that *Error implements error
var _ error = (*Error)(nil)

func (e *Error) Error() string {
	msg := e.Kind.String() + " error"
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (%d %s)", msg, e.Status, http.StatusText(e.Status))
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden) works
// regardless of status or detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// RequiresLogin reports whether the user has to log in again to recover from kind.
func RequiresLogin(kind Kind) bool {
	return kind == KindAuth || kind == KindSessionExpired
}

// Notifies reports whether kind surfaces a transient user-facing notification.
func Notifies(kind Kind) bool {
	return kind == KindForbidden || kind == KindServer
}
