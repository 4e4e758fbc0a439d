// Package errs provides the typed error carrier used across the reconciler
// and its supporting subsystems. Every fallible operation wraps its cause
// into an Error so the error-policy layer can classify transient/permanent
// behavior without parsing messages.
package errs

import "fmt"

// Kind classifies an error for the error-policy layer (spec §7). Only the
// error-policy layer inspects Kind; everything else treats errors opaquely.
type Kind string

const (
	KindValidation        Kind = "Validation"
	KindArtifactPending    Kind = "ArtifactPending"
	KindArtifactIntegrity  Kind = "ArtifactIntegrity"
	KindDecryption         Kind = "Decryption"
	KindParse              Kind = "Parse"
	KindTemplating         Kind = "Templating"
	KindProvider           Kind = "Provider"
	KindRuntime            Kind = "Runtime"
)

// Error carries a Kind plus an operation/key context chain alongside the
// wrapped cause, the same context-chain idiom used in internal/reconcileengine's
// call sites (fmt.Errorf("...: %w", err)).
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error

	// Retryable distinguishes a transient occurrence of Kind from a
	// permanent one, for the two kinds whose transience isn't a constant
	// function of Kind alone (KindTemplating: timeout vs non-zero-exit;
	// KindProvider: the cloud SDK's own 429/5xx-vs-4xx classification).
	// Ignored for every other Kind. Zero value (false) means permanent,
	// so callers that never call WithRetryable get the safe default.
	Retryable bool
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s[%s]: %v", e.Kind, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a Kind and an operation label.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithKey attaches a logical-key label used for per-entry error correlation.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithRetryable records the fine-grained transient/permanent signal for a
// KindTemplating or KindProvider error (spec §4.5/§4.6/§7); see the Error.Retryable
// doc comment for why those two kinds need it and the rest don't.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// Transient reports whether the error's Kind is one the error-policy layer
// should retry with backoff rather than move the resource to Failed.
// KindArtifactPending and KindDecryption are unconditionally transient: a
// missing status/artifact or a sops decryption attempt that didn't hit a
// classified permanent reason (wrong key, corrupt ciphertext) is always
// worth retrying. KindTemplating and KindProvider are transient only when
// the error was built with WithRetryable(true) — a non-zero-exit kustomize
// build and a 4xx/validation cloud API error are permanent, while a
// kustomize timeout and a 429/5xx cloud API error are transient.
func Transient(err error) bool {
	var e *Error
	if !As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindArtifactPending, KindDecryption:
		return true
	case KindTemplating, KindProvider:
		return e.Retryable
	default:
		return false
	}
}

// As is a small local wrapper so callers don't need a second stdlib import
// just to type-switch; it mirrors errors.As's contract for *Error only.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
