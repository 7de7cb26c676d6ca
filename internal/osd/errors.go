package osd

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Error kinds. Every error returned by this package wraps exactly one of
// them, so callers can branch with errors.Is.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrUnsupported         = errors.New("unsupported capability")
	ErrNotFound            = errors.New("not found")
	ErrClosed              = errors.New("overlay destroyed")
)

var (
	ErrAlreadyShown  = fmt.Errorf("%w: already displayed", ErrInvalidArgument)
	ErrAlreadyHidden = fmt.Errorf("%w: not displayed", ErrInvalidArgument)
)

// MaxPrintfBuffer bounds the formatted text of a single Printf line.
const MaxPrintfBuffer = 2000

var lastError atomic.Pointer[string]

// LastError returns the message of the most recent failure from any
// session in the process, or "" if nothing has failed yet. Concurrent
// failures overwrite each other; the returned error of each call is the
// reliable source.
func LastError() string {
	if p := lastError.Load(); p != nil {
		return *p
	}
	return ""
}

func setLastError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lastError.Store(&msg)
	return err
}

// failf builds an error of the given kind and records it as the last error.
func failf(kind error, format string, args ...any) error {
	return setLastError(fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}
