// Package spatioerr defines the typed error kinds shared across the
// geometry, index, log and command layers, and their wire disposition.
package spatioerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags an error with the disposition table from the spec's error
// handling design: how the command layer should turn it into a reply.
type Kind int

const (
	KindInvalidGeoJSON Kind = iota
	KindInvalidArgument
	KindArity
	KindUnknownCommand
	KindNotFound
	KindTimeout
	KindAofWrite
	KindAofRecovery
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidGeoJSON:
		return "InvalidGeoJSON"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindArity:
		return "ArityError"
	case KindUnknownCommand:
		return "UnknownCommand"
	case KindNotFound:
		return "NotFound"
	case KindTimeout:
		return "Timeout"
	case KindAofWrite:
		return "AofWriteFailed"
	case KindAofRecovery:
		return "AofRecoveryError"
	case KindFatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Error is the common error type carried across layers. Lower layers
// return it; the command layer maps it to a Reply without panicking.
type Error struct {
	Kind Kind
	Msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, err: err}
}

func InvalidGeoJSON(format string, args ...any) *Error {
	return New(KindInvalidGeoJSON, fmt.Sprintf(format, args...))
}

func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

// Timeout reports a lock-acquisition budget that expired without any
// mutation having taken place.
func Timeout(d time.Duration) *Error {
	return New(KindTimeout, fmt.Sprintf("timed out after %s", d))
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
