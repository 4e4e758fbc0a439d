// Package backoff implements the process-wide Fibonacci retry table
// described in spec §3 (BackoffTable) and §4.8: per-(namespace,name) error
// counts mapped to a monotonically non-decreasing delay between a floor and
// a ceiling, reset to the floor on success.
package backoff

import (
	"sync"
	"time"
)

// Key identifies one backoff entry.
type Key struct {
	Namespace string
	Name      string
}

type entry struct {
	errorCount int
	nextDelay  time.Duration
}

// Table is the shared, mutated-only-by-the-error-policy-layer backoff
// table named in spec §5 ("Shared resources").
type Table struct {
	mu      sync.Mutex
	floor   time.Duration
	ceiling time.Duration
	entries map[Key]*entry
}

// New creates a Table with the given floor/ceiling (spec default 60s/600s).
func New(floor, ceiling time.Duration) *Table {
	return &Table{
		floor:   floor,
		ceiling: ceiling,
		entries: make(map[Key]*entry),
	}
}

// Failure records a transient failure for key and returns the delay to wait
// before the next attempt. Successive calls produce non-decreasing delays
// (Fibonacci growth) until the ceiling (P10).
func (t *Table) Failure(key Key) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &entry{}
		t.entries[key] = e
	}
	e.errorCount++
	e.nextDelay = t.fibonacciDelay(e.errorCount)
	return e.nextDelay
}

// Success clears the error count for key, resetting the next delay to the
// floor (P10).
func (t *Table) Success(key Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// fibonacciDelay computes the n-th delay clamped to [floor, ceiling]. n=1
// returns the floor, n=2 returns floor+floor/2, and every subsequent term is
// the sum of the previous two (spec §8 scenario 6: with a 60s floor the
// schedule runs 60s, 90s, 150s, 240s, 390s, then the 600s ceiling).
func (t *Table) fibonacciDelay(n int) time.Duration {
	a, b := t.floor, t.floor+t.floor/2
	for i := 1; i < n; i++ {
		a, b = b, a+b
	}
	if a > t.ceiling {
		return t.ceiling
	}
	if a < t.floor {
		return t.floor
	}
	return a
}
