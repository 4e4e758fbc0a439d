package reconcileengine

import "time"

// nowFunc is injected so Reconcile stays a pure function of its explicit
// inputs rather than reading the wall clock itself.
type nowFunc func() time.Time

// defaultBackoffFloor is used only when no backoff table is wired in
// (e.g. a bare unit test of the transient-error branch); production
// callers always supply Dependencies.Backoff.
const defaultBackoffFloor = 60 * time.Second
