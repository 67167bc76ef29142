package ai

import (
	"errors"
	"fmt"
)

var ErrUnavailable = errors.New("ai provider not configured")

// httpStatusError preserves the upstream HTTP status so the completion
// client can classify the failure as retryable or not.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.status, e.body)
}

func (e *httpStatusError) StatusCode() int {
	return e.status
}

func newHTTPStatusError(status int, body string) error {
	return &httpStatusError{status: status, body: body}
}
