package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrMissingAPIKey is returned before any network call when no API
	// key is configured.
	ErrMissingAPIKey = errors.New("API key is not configured")

	// ErrRequestTimeout is returned when a request exceeded its deadline.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrUnknownProvider is returned by NewProvider for unsupported names.
	ErrUnknownProvider = errors.New("unknown provider")
)

// RemoteAPIError is a failure reported by the completion service or the
// transport to it.
type RemoteAPIError struct {
	Provider string
	Model    string
	// Status is the HTTP status code, or 0 when no response was received.
	Status  int
	Message string
}

func (e *RemoteAPIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.Status, e.Message)
}

// timeoutError marks a timed out attempt against one model.
type timeoutError struct {
	model string
	after string
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("%s: %s after %s", ErrRequestTimeout, e.model, e.after)
}

func (e *timeoutError) Unwrap() error { return ErrRequestTimeout }

// isDeadline reports whether err came from an expired deadline.
func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
