package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a single-writer-many-reader store of resolved artifacts, keyed
// by Ref. At most one download is in flight per key; concurrent
// reconciliations for the same (source, revision) coalesce onto it via
// singleflight, generalizing the implicit per-agent clone/fetch
// serialization a prior git client achieved into an explicit shared cache.
type Cache struct {
	mu      sync.Mutex
	entries map[Ref]*cacheEntry
	group   singleflight.Group
	root    string
	ceiling time.Duration
}

type cacheEntry struct {
	dir        string
	revision   string
	acquiredAt time.Time
	refCount   int32
}

// NewCache builds a Cache rooted at root, evicting entries older than
// ceiling once unreferenced.
func NewCache(root string, ceiling time.Duration) *Cache {
	return &Cache{
		entries: make(map[Ref]*cacheEntry),
		root:    root,
		ceiling: ceiling,
	}
}

// fetchFunc materializes ref's working tree into dir and returns the
// resolved revision (which may differ from ref.Revision only in the Argo
// case, where "HEAD"-style symbolic revisions resolve to a concrete SHA).
type fetchFunc func(ctx context.Context, dir string) (string, error)

// Acquire returns a Resolved borrow for ref, downloading it via fetch only
// if not already cached (or if a download for this exact key is not
// already in flight).
func (c *Cache) Acquire(ctx context.Context, ref Ref, fetch fetchFunc) (Resolved, error) {
	c.mu.Lock()
	if entry, ok := c.entries[ref]; ok {
		entry.refCount++
		c.mu.Unlock()
		return c.borrow(ref, entry), nil
	}
	c.mu.Unlock()

	key := cacheKey(ref)
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		if entry, ok := c.entries[ref]; ok {
			c.mu.Unlock()
			return entry, nil
		}
		c.mu.Unlock()

		dir := filepath.Join(c.root, key)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("preparing artifact directory: %w", err)
		}

		revision, err := fetch(ctx, dir)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, err
		}

		entry := &cacheEntry{dir: dir, revision: revision, acquiredAt: now()}
		c.mu.Lock()
		c.entries[ref] = entry
		c.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return Resolved{}, err
	}

	entry := result.(*cacheEntry)
	c.mu.Lock()
	entry.refCount++
	c.mu.Unlock()
	return c.borrow(ref, entry), nil
}

func (c *Cache) borrow(ref Ref, entry *cacheEntry) Resolved {
	var released bool
	var mu sync.Mutex
	release := func() {
		mu.Lock()
		defer mu.Unlock()
		if released {
			return
		}
		released = true
		c.mu.Lock()
		entry.refCount--
		c.mu.Unlock()
	}
	return Resolved{
		Dir:         entry.dir,
		Revision:    entry.revision,
		AcquiredAt:  entry.acquiredAt,
		releaseOnce: release,
	}
}

// EvictStale removes entries older than the configured ceiling that are
// not currently borrowed (refCount == 0), and entries for revisions other
// than the most recently acquired one for the same source (P: prior
// revisions of the same source are evictable once idle).
func (c *Cache) EvictStale(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	latestBySource := make(map[string]time.Time)
	for ref, entry := range c.entries {
		sourceKey := string(ref.SourceKind) + "/" + ref.SourceNamespace + "/" + ref.SourceName
		if entry.acquiredAt.After(latestBySource[sourceKey]) {
			latestBySource[sourceKey] = entry.acquiredAt
		}
	}

	for ref, entry := range c.entries {
		if entry.refCount > 0 {
			continue
		}
		sourceKey := string(ref.SourceKind) + "/" + ref.SourceNamespace + "/" + ref.SourceName
		stale := now.Sub(entry.acquiredAt) > c.ceiling
		superseded := entry.acquiredAt.Before(latestBySource[sourceKey])
		if stale || superseded {
			_ = os.RemoveAll(entry.dir)
			delete(c.entries, ref)
		}
	}
}

func cacheKey(ref Ref) string {
	return fmt.Sprintf("%s_%s_%s_%s", ref.SourceKind, ref.SourceNamespace, ref.SourceName, ref.Revision)
}

func now() time.Time {
	return time.Now()
}
