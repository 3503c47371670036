package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/google/go-github/v62/github"
)

// TransportError reports a failed fetch of one branch. Transient is true for
// failures that may succeed later (5xx, 429, network errors, timeouts).
type TransportError struct {
	Branch     string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch pull requests for branch %q: status %d: %v", e.Branch, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("failed to fetch pull requests for branch %q: %v", e.Branch, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func newTransportError(branch string, err error) *TransportError {
	te := &TransportError{Branch: branch, Err: err}

	var (
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
		respErr  *github.ErrorResponse
		stErr    *StatusError
		netErr   net.Error
	)
	switch {
	case errors.As(err, &rateErr):
		te.StatusCode = statusOf(rateErr.Response)
		te.Transient = true
	case errors.As(err, &abuseErr):
		te.StatusCode = statusOf(abuseErr.Response)
		te.Transient = true
	case errors.As(err, &respErr):
		te.StatusCode = statusOf(respErr.Response)
		te.Transient = IsTransientStatus(te.StatusCode)
	case errors.As(err, &stErr):
		te.StatusCode = stErr.StatusCode
		te.Transient = IsTransientStatus(te.StatusCode)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		te.Transient = true
	}
	return te
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
