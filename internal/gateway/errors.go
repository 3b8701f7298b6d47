package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthorizationExpired is returned after the backend rejected the session.
// The session has already been cleared and the login redirect issued, so
// callers should stop without rendering an error.
var ErrAuthorizationExpired = errors.New("authorization expired")

// NetworkError describes a failed backend call. StatusCode is 0 when the
// backend could not be reached.
type NetworkError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: backend unreachable: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
