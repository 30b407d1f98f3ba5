package mockwire

import (
	"context"
	"fmt"
	"syscall"
)

// Fault errors are the synthetic transport failures produced by a
// definition's NetworkError label. They are deterministic: a labeled
// definition fails every matched call, unconditionally. Callers branch
// on them the way they branch on real transport failures, via
// errors.Is and the net.Error interface.

// TimeoutError is the failure produced by the "timeout" label. It
// satisfies net.Error with Timeout() == true.
type TimeoutError struct {
	URL string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("mockwire: request to %s timed out", e.URL)
}

// Timeout marks the error as a timeout.
func (e *TimeoutError) Timeout() bool { return true }

// Temporary marks the error as retryable.
func (e *TimeoutError) Temporary() bool { return true }

// ConnectionRefusedError is the failure produced by the
// "connection_refused" label. errors.Is(err, syscall.ECONNREFUSED)
// holds.
type ConnectionRefusedError struct {
	URL string
}

// Error implements the error interface.
func (e *ConnectionRefusedError) Error() string {
	return fmt.Sprintf("mockwire: connection to %s refused", e.URL)
}

// Unwrap exposes the underlying refusal errno.
func (e *ConnectionRefusedError) Unwrap() error { return syscall.ECONNREFUSED }

// AbortError is the cancellation-style failure produced by the
// "abort" label. errors.Is(err, context.Canceled) holds.
type AbortError struct {
	URL string
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	return fmt.Sprintf("mockwire: request to %s aborted", e.URL)
}

// Unwrap exposes the cancellation cause.
func (e *AbortError) Unwrap() error { return context.Canceled }

// TransportError is the generic failure produced by any other
// non-empty network-error label.
type TransportError struct {
	Label string
	URL   string
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("mockwire: request to %s failed: %s", e.URL, e.Label)
}

// faultFor maps a network-error label to its transport failure.
func faultFor(label, url string) error {
	switch label {
	case FaultTimeout:
		return &TimeoutError{URL: url}
	case FaultConnectionRefused:
		return &ConnectionRefusedError{URL: url}
	case FaultAbort:
		return &AbortError{URL: url}
	default:
		return &TransportError{Label: label, URL: url}
	}
}
