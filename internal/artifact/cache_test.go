package artifact

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheAcquireCoalescesConcurrentFetches(t *testing.T) {
	c := NewCache(t.TempDir(), time.Hour)
	ref := Ref{SourceKind: SourceKindFlux, SourceNamespace: "ns", SourceName: "repo", Revision: "abc123"}

	var fetchCount int32
	fetch := func(ctx context.Context, dir string) (string, error) {
		atomic.AddInt32(&fetchCount, 1)
		time.Sleep(10 * time.Millisecond)
		return "abc123", nil
	}

	results := make(chan Resolved, 5)
	for i := 0; i < 5; i++ {
		go func() {
			r, err := c.Acquire(context.Background(), ref, fetch)
			if err != nil {
				t.Error(err)
				return
			}
			results <- r
		}()
	}

	for i := 0; i < 5; i++ {
		r := <-results
		if r.Revision != "abc123" {
			t.Fatalf("unexpected revision: %s", r.Revision)
		}
		r.Release()
	}

	if got := atomic.LoadInt32(&fetchCount); got != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d", got)
	}
}

func TestCacheEvictStaleRemovesIdleOldEntries(t *testing.T) {
	c := NewCache(t.TempDir(), time.Millisecond)
	ref := Ref{SourceKind: SourceKindFlux, SourceNamespace: "ns", SourceName: "repo", Revision: "rev1"}

	r, err := c.Acquire(context.Background(), ref, func(ctx context.Context, dir string) (string, error) {
		return "rev1", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.Release()

	time.Sleep(5 * time.Millisecond)
	c.EvictStale(time.Now())

	if _, ok := c.entries[ref]; ok {
		t.Fatalf("expected stale entry to be evicted")
	}
}

func TestCacheEvictStaleKeepsBorrowedEntries(t *testing.T) {
	c := NewCache(t.TempDir(), time.Millisecond)
	ref := Ref{SourceKind: SourceKindFlux, SourceNamespace: "ns", SourceName: "repo", Revision: "rev1"}

	r, err := c.Acquire(context.Background(), ref, func(ctx context.Context, dir string) (string, error) {
		return "rev1", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	c.EvictStale(time.Now())

	if _, ok := c.entries[ref]; !ok {
		t.Fatalf("expected borrowed entry to survive eviction")
	}
	r.Release()
}

func TestSafeJoinRejectsEscape(t *testing.T) {
	if _, err := safeJoin("/tmp/root", "../../etc/passwd"); err == nil {
		t.Fatalf("expected path escape to be rejected")
	}
	if _, err := safeJoin("/tmp/root", "/etc/passwd"); err == nil {
		t.Fatalf("expected absolute path to be rejected")
	}
	got, err := safeJoin("/tmp/root", "nested/file.yaml")
	if err != nil || got != "/tmp/root/nested/file.yaml" {
		t.Fatalf("expected safe nested path to resolve, got %q err=%v", got, err)
	}
}
