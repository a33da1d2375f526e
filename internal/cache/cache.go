// Package cache deduplicates expensive inference calls by content
// fingerprint. Entries are immutable once stored and never evicted; the
// process lifetime bounds growth.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ComputeFunc produces the value for a missing key.
type ComputeFunc func(ctx context.Context) (string, error)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for miss/failure diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l.With().Str("component", "cache").Logger() }
}

// Cache maps fingerprints to computed descriptions. The lock only guards the
// map; computations run outside it, one per key at a time.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]string
	group   singleflight.Group
	log     zerolog.Logger
}

func New(opts ...Option) *Cache {
	c := &Cache{entries: make(map[Key]string), log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

type flightResult struct {
	val string
	hit bool
}

// GetOrCompute returns the value stored for (image, labels), computing and
// storing it on a miss. Concurrent callers for the same key share a single
// computation; callers for different keys never wait on each other. A failed
// computation is returned wrapped in ErrComputationFailed and nothing is
// stored, so the next call retries.
//
// The computation is detached from the caller's cancellation because other
// callers may be waiting on it; a caller whose ctx ends stops waiting and gets
// ctx.Err(), and a result that still arrives is stored. A caller whose ctx is
// already done on a miss gets ctx.Err() without starting a computation.
func (c *Cache) GetOrCompute(ctx context.Context, image []byte, labels []string, compute ComputeFunc) (string, bool, error) {
	key := Fingerprint(image, labels)
	if v, ok := c.Get(key); ok {
		cacheHits.Inc()
		return v, true, nil
	}
	// A caller that already gave up must not start a detached computation.
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	ch := c.group.DoChan(key.String(), func() (any, error) {
		// Filled between the lookup above and joining the flight.
		if v, ok := c.Get(key); ok {
			return flightResult{val: v, hit: true}, nil
		}
		cacheMisses.Inc()
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			cacheFailures.Inc()
			c.log.Debug().Err(err).Str("key", key.String()).Msg("computation failed, not cached")
			return nil, err
		}
		c.store(key, v)
		return flightResult{val: v}, nil
	})
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", false, fmt.Errorf("%w: %w", ErrComputationFailed, r.Err)
		}
		res := r.Val.(flightResult)
		if res.hit {
			cacheHits.Inc()
		}
		return res.val, res.hit, nil
	}
}

// Get returns the value stored under key.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len reports the number of stored entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) store(key Key, v string) {
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = v
	}
	n := len(c.entries)
	c.mu.Unlock()
	cacheEntries.Set(float64(n))
}
