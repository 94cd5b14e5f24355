// Package metaerr declares the error kinds surfaced by the indexing and
// retrieval core. Genuine faults are always wrapped with one of the
// sentinel kinds below via pkg/errors so callers can test with errors.Is;
// expected control flow (a missing term, an unknown metadata field) is
// represented as (value, bool) at the call site instead, per spec.
package metaerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the error kinds named by the specification's error design.
type Kind error

var (
	// ErrConfig marks a missing or malformed configuration key.
	ErrConfig Kind = errors.New("config-error")

	// ErrCorpus marks an unreadable corpus or a malformed line in the file list.
	ErrCorpus Kind = errors.New("corpus-error")

	// ErrIO marks a file open/read/write/mmap/rename failure.
	ErrIO Kind = errors.New("io-error")

	// ErrIndexFormat marks an on-disk structure that violates an invariant,
	// e.g. a record wider than a single vocabulary_map block.
	ErrIndexFormat Kind = errors.New("index-format-error")

	// ErrTypeMismatch marks metadata.get[T] called with the wrong declared type.
	ErrTypeMismatch Kind = errors.New("type-mismatch")

	// ErrUnknownField marks metadata.get[T] called with an undeclared field name.
	ErrUnknownField Kind = errors.New("unknown-field")

	// ErrRanker marks a malformed query, e.g. a negative ranker parameter.
	// A zero-length query is not an error: it produces an empty result.
	ErrRanker Kind = errors.New("ranker-error")
)

// wrapped pairs a sentinel Kind with the underlying cause, while keeping
// both ends of the chain reachable: Unwrap exposes kind (so errors.Is(err,
// kind) succeeds) and Cause exposes the original failure (so
// errors.Cause(err), used by pkg/errors-style callers, still works).
type wrapped struct {
	kind  Kind
	cause error
	msg   string
}

func (w *wrapped) Error() string {
	if w.cause == nil {
		return w.kind.Error() + ": " + w.msg
	}
	return w.kind.Error() + ": " + w.msg + ": " + w.cause.Error()
}

func (w *wrapped) Unwrap() error { return w.kind }
func (w *wrapped) Cause() error {
	if w.cause != nil {
		return w.cause
	}
	return w.kind
}

// Wrap annotates cause with kind and a formatted message, preserving the
// chain so that errors.Is(result, kind) and errors.Cause(result) both work.
// cause may be nil when the error originates here.
func Wrap(kind Kind, cause error, format string, args ...interface{}) error {
	return &wrapped{kind: kind, cause: cause, msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err is ultimately of the given kind.
func Is(err error, kind Kind) bool {
	return errors.Is(err, kind)
}
