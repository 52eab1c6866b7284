// Package optimistic tracks local mutations applied ahead of remote confirmation.
//
// Each pending update is keyed by a correlation id and carries the prior local
// state plus a restore callback. Exactly one of Commit or Rollback consumes it.
package optimistic

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/huangsam/storesync/internal/contract"
)

type pending struct {
	id        string
	seq       uint64
	appliedAt time.Time
	restore   func()
}

// Queue holds the live pending updates. It is safe for concurrent use.
type Queue struct {
	mu   sync.Mutex
	live map[string]*pending
	seq  uint64

	// ids dropped by RollbackAll, so a late Commit can be reported
	reset map[string]struct{}

	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		live:   make(map[string]*pending),
		reset:  make(map[string]struct{}),
		now:    time.Now,
		logger: contract.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Apply records a pending update for id and returns next for immediate display.
// restore is called with prior if the update is rolled back; it may be nil.
// A second Apply for a live id fails with a MisuseError matching ErrPendingExists.
func Apply[T any](q *Queue, id string, next, prior T, restore func(T)) (T, error) {
	var fn func()
	if restore != nil {
		fn = func() { restore(prior) }
	}
	if err := q.register(id, fn); err != nil {
		var zero T
		return zero, err
	}
	return next, nil
}

func (q *Queue) register(id string, restore func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.live[id]; ok {
		return &MisuseError{ID: id, Err: ErrPendingExists}
	}
	q.seq++
	q.live[id] = &pending{id: id, seq: q.seq, appliedAt: q.now(), restore: restore}
	delete(q.reset, id)
	q.logger.Debug("optimistic update applied", "id", id)
	return nil
}

// Commit resolves id successfully. Local state is left as applied.
// It returns false for an unknown or already resolved id.
func (q *Queue) Commit(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.live[id]; !ok {
		if _, wasReset := q.reset[id]; wasReset {
			delete(q.reset, id)
			q.logger.Warn("commit after reset ignored", "id", id)
		}
		return false
	}
	delete(q.live, id)
	q.logger.Debug("optimistic update committed", "id", id)
	return true
}

// Rollback resolves id as failed and restores the prior local state.
// It returns false for an unknown or already resolved id.
func (q *Queue) Rollback(id string) bool {
	q.mu.Lock()
	p, ok := q.live[id]
	if ok {
		delete(q.live, id)
	} else {
		// a failure after RollbackAll resolves the reset id too
		delete(q.reset, id)
	}
	q.mu.Unlock()

	if !ok {
		return false
	}
	if p.restore != nil {
		p.restore()
	}
	q.logger.Debug("optimistic update rolled back", "id", id)
	return true
}

// RollbackAll restores every pending update, newest first, and returns how many
// were restored. Commits that arrive later for those ids are ignored.
func (q *Queue) RollbackAll() int {
	q.mu.Lock()
	all := make([]*pending, 0, len(q.live))
	for id, p := range q.live {
		all = append(all, p)
		q.reset[id] = struct{}{}
	}
	q.live = make(map[string]*pending)
	q.mu.Unlock()

	slices.SortFunc(all, func(a, b *pending) int {
		return cmp.Compare(b.seq, a.seq)
	})
	for _, p := range all {
		if p.restore != nil {
			p.restore()
		}
	}
	if len(all) > 0 {
		q.logger.Info("pending updates rolled back", "count", len(all))
	}
	return len(all)
}

// Pending returns the live ids in apply order.
func (q *Queue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	all := make([]*pending, 0, len(q.live))
	for _, p := range q.live {
		all = append(all, p)
	}
	slices.SortFunc(all, func(a, b *pending) int {
		return cmp.Compare(a.seq, b.seq)
	})
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.id
	}
	return ids
}

// Age reports how long id has been pending.
func (q *Queue) Age(id string) (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.live[id]
	if !ok {
		return 0, false
	}
	return q.now().Sub(p.appliedAt), true
}

// IsPending reports whether id has a live pending update.
func (q *Queue) IsPending(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.live[id]
	return ok
}

// Len returns the number of live pending updates.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.live)
}
