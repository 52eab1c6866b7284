package synccache

import "sync/atomic"

// Metrics is how the cache reports what it is doing.
// Each method represents an event in the cache lifecycle.
type Metrics interface {
	// Hit is called when a valid entry is returned.
	Hit()

	// Miss is called when a key is absent or stale.
	Miss()

	// Expire is called when a stale entry is evicted.
	Expire()

	// Invalidate is called once per entry removed by invalidation.
	Invalidate()
}

// NoopMetrics ignores all events so callers who do not care need no nil checks.
type NoopMetrics struct{}

func (NoopMetrics) Hit()        {}
func (NoopMetrics) Miss()       {}
func (NoopMetrics) Expire()     {}
func (NoopMetrics) Invalidate() {}

// Stats counts events. It is safe for concurrent use.
type Stats struct {
	hits, misses, expired, invalidated atomic.Int64
}

var _ Metrics = &Stats{} // Compile-time check

func (s *Stats) Hit()        { s.hits.Add(1) }
func (s *Stats) Miss()       { s.misses.Add(1) }
func (s *Stats) Expire()     { s.expired.Add(1) }
func (s *Stats) Invalidate() { s.invalidated.Add(1) }

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Hits        int64 `json:"hits" yaml:"hits"`
	Misses      int64 `json:"misses" yaml:"misses"`
	Expired     int64 `json:"expired" yaml:"expired"`
	Invalidated int64 `json:"invalidated" yaml:"invalidated"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		Expired:     s.expired.Load(),
		Invalidated: s.invalidated.Load(),
	}
}
