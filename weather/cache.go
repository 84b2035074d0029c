package weather

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a city's report is served from cache.
const DefaultTTL = 60 * time.Second

// Fetcher looks up a city's current weather.
type Fetcher interface {
	Current(ctx context.Context, city string) (*Report, error)
}

type cached struct {
	report  *Report
	expires time.Time
}

// Cache keeps the latest report per city for a TTL. Concurrent misses for
// the same city share one upstream call, which runs detached from any one
// caller's context; each caller stops waiting when its own context ends.
// Failures are not cached, so a failed lookup leaves the previous entry
// (if still fresh) in place. A fetch that overlaps Invalidate is returned
// to its callers but not stored.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cached
	gen     uint64 // bumped by Invalidate
	group   singleflight.Group
}

// NewCache wraps f with a TTL cache. ttl <= 0 uses DefaultTTL.
func NewCache(f Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		fetcher: f,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cached),
	}
}

// Get returns the report for city. hit reports whether it came from cache.
func (c *Cache) Get(ctx context.Context, city string) (report *Report, hit bool, err error) {
	c.mu.Lock()
	e, ok := c.entries[city]
	c.mu.Unlock()
	if ok && c.now().Before(e.expires) {
		return e.report, true, nil
	}

	ch := c.group.DoChan(city, func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		r, err := c.fetcher.Current(context.WithoutCancel(ctx), city)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[city] = cached{report: r, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return r, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*Report), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate drops every cached report, so the next Get for any city goes
// upstream.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cached)
	c.gen++
	c.mu.Unlock()
}

// Len returns the number of cached cities, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
