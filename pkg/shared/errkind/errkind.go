// Package errkind defines the error taxonomy shared across the reasoning
// core: every package that can fail wraps a sentinel from this package so
// the API layer can map failures to a stable response shape without
// inspecting error strings.
package errkind

import "errors"

var (
	// ErrClientInvalid marks a malformed or out-of-policy request (e.g. a
	// question below the minimum length, or a missing incident ID).
	ErrClientInvalid = errors.New("client_invalid")

	// ErrTransportUnavailable marks failure to reach an external
	// collaborator (corpus index backend, LLM provider, case memory store).
	ErrTransportUnavailable = errors.New("transport_unavailable")

	// ErrParseError marks a response that could not be parsed into the
	// expected structured or semi-structured shape.
	ErrParseError = errors.New("parse_error")

	// ErrCriticalValidation marks a reasoning output the validator
	// gatekeeper refused to pass through to synthesis.
	ErrCriticalValidation = errors.New("critical_validation")

	// ErrDeadlineExceeded marks a pipeline step that exceeded its budget.
	ErrDeadlineExceeded = errors.New("deadline_exceeded")

	// ErrInternal marks an unexpected failure with no more specific kind.
	ErrInternal = errors.New("internal_error")
)

// Kind returns the taxonomy sentinel wrapped by err, or ErrInternal if err
// does not wrap any of the known kinds.
func Kind(err error) error {
	for _, k := range []error{
		ErrClientInvalid,
		ErrTransportUnavailable,
		ErrParseError,
		ErrCriticalValidation,
		ErrDeadlineExceeded,
		ErrInternal,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Wrap annotates err with kind so that errors.Is(wrapped, kind) succeeds,
// while keeping err's own message and %w chain intact.
func Wrap(kind error, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }
