// Package synccache is the process-local read cache that sits in front of the record store.
//
// Entries expire a fixed TTL after they were stored. Expiry is lazy: a stale entry is
// evicted by the access that observes it. Invalidation is either by key substring
// (Invalidate) or by structured key kind (InvalidateKind).
package synccache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/storesync/internal/contract"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds staleness when the caller does not choose a TTL.
const DefaultTTL = contract.DefaultCacheTTL

// Entry is a cached value together with its age bookkeeping.
type Entry struct {
	Data     any
	StoredAt time.Time
	TTL      time.Duration
}

// Valid reports whether the entry may still be served at now.
func (e *Entry) Valid(now time.Time) bool {
	return now.Sub(e.StoredAt) <= e.TTL
}

// Producer fetches a value from the source of truth on a cache miss.
type Producer func(ctx context.Context) (any, error)

// Cache is a TTL-bounded key/value store. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry

	defaultTTL time.Duration
	now        func() time.Time
	metrics    Metrics
	logger     *slog.Logger

	// sf collapses concurrent misses for the same key into one producer call.
	sf singleflight.Group
	// inflight holds keys whose producer is running; true once an invalidation
	// hit the key, so the result is returned but not stored.
	inflight map[string]bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithDefaultTTL overrides DefaultTTL. Non-positive values are ignored.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:    make(map[string]*Entry),
		inflight:   make(map[string]bool),
		defaultTTL: DefaultTTL,
		now:        time.Now,
		metrics:    NoopMetrics{},
		logger:     contract.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultTTL returns the TTL applied when none is given.
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key, replacing any existing entry and resetting its age.
// A non-positive ttl means the default TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &Entry{Data: value, StoredAt: c.now(), TTL: ttl}
}

// Get returns the value under key if present and unexpired.
// A stale entry is evicted as a side effect. Absence is not an error.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (any, bool) {
	ent, ok := c.entries[key]
	if !ok {
		c.metrics.Miss()
		return nil, false
	}
	if !ent.Valid(c.now()) {
		delete(c.entries, key)
		c.metrics.Expire()
		c.metrics.Miss()
		return nil, false
	}
	c.metrics.Hit()
	return ent.Data, true
}

// Invalidate evicts every key containing pattern. An empty pattern clears the cache.
// It returns the number of evicted entries.
func (c *Cache) Invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		n := len(c.entries)
		c.entries = make(map[string]*Entry)
		c.markInflight(func(string) bool { return true })
		c.recordInvalidations(n)
		c.logger.Debug("cache cleared", "evicted", n)
		return n
	}

	n := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			n++
		}
	}
	c.markInflight(func(key string) bool { return strings.Contains(key, pattern) })
	c.recordInvalidations(n)
	c.logger.Debug("cache invalidated", "pattern", pattern, "evicted", n)
	return n
}

// InvalidateKind evicts every key whose kind segment equals kind, i.e. the key
// kind itself and any kind:... variant. Unlike Invalidate it never matches
// "products" inside "productsale:1".
func (c *Cache) InvalidateKind(kind string) int {
	if kind == "" {
		return 0
	}
	prefix := kind + keySeparator

	c.mu.Lock()
	defer c.mu.Unlock()

	match := func(key string) bool { return key == kind || strings.HasPrefix(key, prefix) }
	n := 0
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			n++
		}
	}
	c.markInflight(match)
	c.recordInvalidations(n)
	c.logger.Debug("cache kind invalidated", "kind", kind, "evicted", n)
	return n
}

// Delete evicts exactly one key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[key]; ok {
		c.inflight[key] = true
	}
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.recordInvalidations(1)
	return true
}

// InvalidateKey is Delete for a structured key.
func (c *Cache) InvalidateKey(key Key) bool {
	return c.Delete(key.String())
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.Invalidate("")
}

// Len returns the number of live entries, purging expired ones on the way.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, ent := range c.entries {
		if !ent.Valid(now) {
			delete(c.entries, key)
			c.metrics.Expire()
		}
	}
	return len(c.entries)
}

// ReadThrough returns the cached value for key, or calls producer, stores its
// result with ttl (non-positive means default) and returns it.
// Producer errors are returned as-is and nothing is cached.
func (c *Cache) ReadThrough(ctx context.Context, key string, producer Producer, ttl time.Duration) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, shared := c.sf.Do(key, func() (any, error) {
		// Another caller may have filled the key while we were queued.
		c.mu.Lock()
		if ent, ok := c.entries[key]; ok && ent.Valid(c.now()) {
			c.mu.Unlock()
			return ent.Data, nil
		}
		c.inflight[key] = false
		c.mu.Unlock()

		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		val, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		if ttl <= 0 {
			ttl = c.defaultTTL
		}
		c.mu.Lock()
		stale := c.inflight[key]
		if !stale {
			c.entries[key] = &Entry{Data: val, StoredAt: c.now(), TTL: ttl}
		}
		c.mu.Unlock()
		if stale {
			c.logger.Debug("read-through result not cached after invalidation", "key", key)
		}
		return val, nil
	})
	if err != nil {
		c.logger.Debug("read-through producer failed", "key", key, "err", err)
		return nil, err
	}
	if shared {
		c.logger.Debug("read-through result shared", "key", key)
	}
	return v, nil
}

// Fetch is the typed form of ReadThrough.
func Fetch[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.ReadThrough(ctx, key.String(), func(ctx context.Context) (any, error) {
		return producer(ctx)
	}, ttl)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %s holds %T, not %T", key, v, zero)
	}
	return typed, nil
}

// markInflight flags running producers whose key matches. Callers hold c.mu.
func (c *Cache) markInflight(match func(key string) bool) {
	for key := range c.inflight {
		if match(key) {
			c.inflight[key] = true
		}
	}
}

func (c *Cache) recordInvalidations(n int) {
	for range n {
		c.metrics.Invalidate()
	}
}
