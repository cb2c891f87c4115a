package csrf

import (
	"errors"
	"net/http"
)

// ValidationError is returned by Validate and carries the HTTP status the
// host framework should render for the failure.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	// ErrSessionRequired reports that no session object was attached to the request.
	ErrSessionRequired = &ValidationError{Status: http.StatusForbidden, Message: "Session required for CSRF protection"}

	// ErrTokenNotFound reports that the session exists but holds no token.
	ErrTokenNotFound = &ValidationError{Status: http.StatusForbidden, Message: "CSRF token not found in session"}

	// ErrInvalidToken reports that a candidate token matched neither via header nor body.
	ErrInvalidToken = &ValidationError{Status: http.StatusForbidden, Message: "Invalid CSRF token"}
)

// StatusOf returns the HTTP status carried by err, or 500 when err is not a
// ValidationError (e.g. a randomness failure during token generation).
func StatusOf(err error) int {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Status
	}
	return http.StatusInternalServerError
}
