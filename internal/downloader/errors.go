package downloader

import (
	"context"
	"errors"
	"fmt"

	"github.com/datallboy/rangefetch/internal/wire"
)

// Kind classifies a download failure.
type Kind int

const (
	// KindTransport wraps a *wire.Error.
	KindTransport Kind = iota + 1
	KindMissingLength
	KindInvalidResponse
	KindIO
)

// Error is a download failure. Err keeps the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

var (
	ErrTransport       = &Error{Kind: KindTransport}
	ErrMissingLength   = &Error{Kind: KindMissingLength}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrIO              = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("HTTP error: %v", e.Err)
	case KindMissingLength:
		return "server did not convey total length information"
	case KindInvalidResponse:
		return "invalid response: " + e.Msg
	default:
		return fmt.Sprintf("io error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// fromWire maps a Requester failure onto the download taxonomy. Wire errors
// become KindTransport, context errors pass through untouched, anything else
// is KindIO.
func fromWire(err error) error {
	if err == nil {
		return nil
	}
	var werr *wire.Error
	if errors.As(err, &werr) {
		return &Error{Kind: KindTransport, Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: KindIO, Err: err}
}

func invalidResponse(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidResponse, Msg: fmt.Sprintf(format, args...)}
}
