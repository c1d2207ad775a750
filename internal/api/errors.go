package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks calls that failed because the refresh handshake
// could not mint a new access token. Callers should route the user back to
// the login page.
var ErrSessionExpired = errors.New("api: session expired")

// Error is the decoded failure half of the backend envelope. Code mirrors the
// envelope's numeric code (HTTP-style); Message is the backend's user-facing
// text and is safe to surface verbatim.
type Error struct {
	Code    int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api: %s (code %d): %v", e.Message, e.Code, e.cause)
	}
	return fmt.Sprintf("api: %s (code %d)", e.Message, e.Code)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// IsUnauthorized reports whether err is an authorization failure (401).
func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == http.StatusUnauthorized
}

// IsSessionExpired reports whether err resulted from a failed refresh cycle.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == http.StatusNotFound
}

// Message extracts the user-facing message from err. Transport failures and
// non-API errors collapse to a generic message so raw error text never
// reaches a page.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return genericFailureMessage
}

const genericFailureMessage = "Something went wrong. Please try again."
