package wire

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindConnectionFailed Kind = iota + 1
	KindTimeout
	KindInvalidResponse
	KindRequestFailed
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindConnectionFailed:
		return "connection failed"
	case KindTimeout:
		return "timeout"
	case KindInvalidResponse:
		return "invalid response"
	case KindRequestFailed:
		return "request failed"
	case KindIO:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure of a single request/response exchange.
type Error struct {
	Kind Kind

	// StatusCode is set for KindRequestFailed.
	StatusCode int

	// Reason describes a KindInvalidResponse.
	Reason string

	Err error
}

// Sentinels for errors.Is. A sentinel matches any *Error of the same kind;
// ErrRequestFailed matches every status code.
var (
	ErrConnectionFailed = &Error{Kind: KindConnectionFailed}
	ErrTimeout          = &Error{Kind: KindTimeout}
	ErrInvalidResponse  = &Error{Kind: KindInvalidResponse}
	ErrRequestFailed    = &Error{Kind: KindRequestFailed}
	ErrIO               = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnectionFailed:
		if e.Err != nil {
			return fmt.Sprintf("connection failed: %v", e.Err)
		}
		return "connection failed"
	case KindTimeout:
		return "connection timed out"
	case KindInvalidResponse:
		if e.Reason != "" {
			return "invalid HTTP response: " + e.Reason
		}
		return "invalid HTTP response"
	case KindRequestFailed:
		return fmt.Sprintf("HTTP request failed with status %d", e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("io error: %v", e.Err)
		}
		return "io error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

func invalidResponse(reason string) *Error {
	return &Error{Kind: KindInvalidResponse, Reason: reason}
}

// classify maps an I/O error from an established connection onto a Kind.
func classify(err error) *Error {
	var ne net.Error
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &ne) && ne.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNABORTED):
		return &Error{Kind: KindConnectionFailed, Err: err}
	default:
		return &Error{Kind: KindIO, Err: err}
	}
}
