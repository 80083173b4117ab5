// Package gavlerr defines the typed error taxonomy of spec §7: every
// operation that can fail reports one of a small closed set of kinds,
// so callers can branch on Kind instead of string-matching messages.
package gavlerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error into the buckets spec §7 distinguishes.
type Kind uint8

// Recognised kinds.
const (
	// KindProtocol marks a malformed or out-of-sequence wire message.
	KindProtocol Kind = iota
	// KindOverflow marks a value or varint that does not fit its
	// target representation.
	KindOverflow
	// KindFormat marks a structurally invalid encoding (bad tag,
	// truncated length, unrecognised type byte).
	KindFormat
	// KindTransport marks a failure in the underlying I/O (socket
	// reset, broken pipe, permission denied).
	KindTransport
	// KindEOF marks a clean end of stream.
	KindEOF
	// KindResource marks exhaustion of a bounded resource (hardware
	// frame pool, file descriptors).
	KindResource
	// KindTimeout marks a non-fatal timeout, distinct from EOF or a
	// hard transport failure: the caller should retry.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindOverflow:
		return "overflow"
	case KindFormat:
		return "format"
	case KindTransport:
		return "transport"
	case KindEOF:
		return "eof"
	case KindResource:
		return "resource"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is a gavl-domain error carrying a Kind alongside the usual
// wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the error is a non-fatal timeout, so
// callers (e.g. pkg/ioh's sticky-error logic) can special-case it
// without importing this package's Kind enum directly.
func (e *Error) Timeout() bool { return e.Kind == KindTimeout }

// New builds an Error. Protocol errors capture a stack trace via
// github.com/pkg/errors, since malformed wire state is exactly the
// case where "where did this come from" matters most during
// debugging a running transport.
func New(kind Kind, op string, cause error) *Error {
	if kind == KindProtocol && cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
