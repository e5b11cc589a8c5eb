package apperror

import (
	"net/http"

	"github.com/pkg/errors"
)

// A Kind classifies an Error.
type Kind string

// Error kinds.
const (
	// ValidationError is a local input error that never reaches the network.
	ValidationError Kind = "validation"
	// LoginRejected is a non-2xx answer from the login endpoint.
	LoginRejected Kind = "login-rejected"
	// AccountUnavailable is a failure to obtain a usable optimal account.
	AccountUnavailable Kind = "account-unavailable"
	// NetworkError is a transport failure while talking to the backend.
	NetworkError Kind = "network"
	// CookieInjectionFailed is a failure reported by the bridge while applying cookies.
	CookieInjectionFailed Kind = "cookie-injection"
	// StorageParseError is a persisted value that cannot be decoded.
	StorageParseError Kind = "storage-parse"
)

// User-visible messages.
const (
	MessageEmptyFields        = "Completa todos los campos"
	MessageLoginInProgress    = "Inicio de sesión en curso"
	MessageAccountUnavailable = "Cuenta no disponible"
	MessageNetwork            = "Error de conexión"
)

// An Error is an error with a kind and a message that can be shown to the user as is.
type Error struct {
	Kind     Kind   `json:"-"`
	HTTPCode int    `json:"-"`
	Message  string `json:"message"`
}

// New returns a new Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewWithCode returns a new Error of the given kind carrying an HTTP status code.
func NewWithCode(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, HTTPCode: code, Message: message}
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is returns true if err or its cause is an Error of the given kind.
func Is(err error, kind Kind) bool {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind == kind
	}
	return false
}

// StatusCode returns the HTTP status code carried by err.
func StatusCode(err error) int {
	if e, ok := errors.Cause(err).(*Error); ok && e.HTTPCode != 0 {
		return e.HTTPCode
	}
	return http.StatusInternalServerError
}

// Message returns the user-visible message of err.
func Message(err error) string {
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Message
	}
	return err.Error()
}
