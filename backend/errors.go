package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.StatusCode)
}

// Rejected reports whether the backend refused the presented credential
// (401 or 403), as opposed to failing for a transient reason.
func (e *HTTPError) Rejected() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// StatusCode extracts the HTTP status from err, or 0 when err is not an
// HTTPError (network failure, decoding failure).
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsRejected reports whether err is a 401/403 HTTPError.
func IsRejected(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Rejected()
}
