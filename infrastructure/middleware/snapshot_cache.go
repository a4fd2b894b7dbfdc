package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trailtap/stamprank/internal/ports"
)

// cachedSource caches snapshots for identical candidate sets within a
// staleness window. Concurrent fetches for the same candidate set are
// collapsed into one upstream call via singleflight.
type cachedSource struct {
	next ports.SnapshotSource
	ttl  time.Duration

	mu    sync.RWMutex
	cache map[string]cachedSnapshot
	sf    singleflight.Group

	// now is injected for tests; defaults to time.Now.
	now func() time.Time
}

type cachedSnapshot struct {
	snapshot ports.Snapshot
	storedAt time.Time
}

// CacheMiddleware creates middleware that caches snapshots keyed by the
// requested candidate set for the given staleness window. A TTL of zero
// or less disables caching entirely.
func CacheMiddleware(ttl time.Duration) SnapshotMiddleware {
	return func(next ports.SnapshotSource) ports.SnapshotSource {
		if ttl <= 0 {
			return next
		}
		return &cachedSource{
			next:  next,
			ttl:   ttl,
			cache: make(map[string]cachedSnapshot),
			now:   time.Now,
		}
	}
}

// FetchSnapshot returns a cached snapshot when one is fresh, collapsing
// duplicate in-flight fetches for the same candidate set.
func (c *cachedSource) FetchSnapshot(ctx context.Context, placeIDs []string) (ports.Snapshot, error) {
	key := cacheKey(placeIDs)

	if snapshot, ok := c.getFresh(key); ok {
		return snapshot, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// Re-check inside singleflight to handle the race between the
		// cache check and group execution.
		if snapshot, ok := c.getFresh(key); ok {
			return snapshot, nil
		}

		snapshot, err := c.next.FetchSnapshot(ctx, placeIDs)
		if err != nil {
			return ports.Snapshot{}, err
		}

		c.mu.Lock()
		c.cache[key] = cachedSnapshot{snapshot: snapshot, storedAt: c.now()}
		c.mu.Unlock()

		return snapshot, nil
	})
	if err != nil {
		return ports.Snapshot{}, err
	}

	return v.(ports.Snapshot), nil
}

func (c *cachedSource) getFresh(key string) (ports.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || c.now().Sub(entry.storedAt) >= c.ttl {
		return ports.Snapshot{}, false
	}
	return entry.snapshot, true
}

// cacheKey derives a stable key from the candidate set. Order and
// duplicates do not change the key: the same set of places yields the
// same snapshot.
func cacheKey(placeIDs []string) string {
	unique := make(map[string]struct{}, len(placeIDs))
	for _, id := range placeIDs {
		unique[id] = struct{}{}
	}

	ids := make([]string, 0, len(unique))
	for id := range unique {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sum := sha256.Sum256([]byte(strings.Join(ids, "\x00")))
	return hex.EncodeToString(sum[:])
}
