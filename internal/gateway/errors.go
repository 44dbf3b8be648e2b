package gateway

import (
	"errors"
	"fmt"
)

// HTTPError reports a non-2xx response from a remote API.
// Every gateway returns it for any unsuccessful status so callers can decide
// whether to abort the run or log and continue.
type HTTPError struct {
	Status int
	URL    string
	Err    error // underlying client error, if any
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected status %d from %s: %v", e.Status, e.URL, e.Err)
	}
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err wraps an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
