package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrInvalidMethod = errors.New("invalid payment method")
	ErrNotConfigured = errors.New("payment provider is not configured")
)

// DeclinedError is a definitive rejection. Retrying the same charge will not help.
type DeclinedError struct {
	Method  string
	Message string
}

func (e *DeclinedError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Method, e.Message)
}

// UnavailableError means the provider could not be reached or failed on its
// side. The charge may succeed on retry.
type UnavailableError struct {
	Method  string
	Message string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("payment provider unavailable (%s): %s", e.Method, e.Message)
}

// HTTPError is a non-2xx answer from a provider API.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s error: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// transportError marks a failure before any HTTP answer was received.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// IsRetryable reports whether err is worth retrying: timeouts, cancellation,
// transport failures and provider 5xx.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}

	var tErr *transportError
	if errors.As(err, &tErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
