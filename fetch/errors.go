package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// MalformedRequestError reports invalid request input. It is a caller
// error and is never retried.
type MalformedRequestError struct {
	URL    string
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request for %q: %s", e.URL, e.Reason)
}

// ExhaustedError reports that every attempt for a URL failed.
type ExhaustedError struct {
	URL      string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("no 200 response from %s after %d attempts", e.URL, e.Attempts)
	}
	return fmt.Sprintf("no 200 response from %s after %d attempts: %v", e.URL, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// errorLabel buckets a transport failure for logs and metrics.
func errorLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return "connection"
	}
	return "other"
}
