package optimistic

import (
	"context"

	"github.com/google/uuid"
)

// Invalidator evicts cache entries affected by a committed mutation.
// *synccache.Cache satisfies it.
type Invalidator interface {
	Invalidate(pattern string) int
	InvalidateKind(kind string) int
	Delete(key string) bool
}

// Mutation describes one optimistic change and its remote counterpart.
type Mutation[T any] struct {
	// ID correlates apply with commit/rollback. Empty means a fresh uuid,
	// which disables the one-pending-per-entity check.
	ID string

	Next  T
	Prior T

	// Present shows Next locally once the update is recorded.
	Present func(T)
	// Restore puts Prior back on rollback.
	Restore func(T)
	// Remote performs the authoritative write. It is called at most once.
	Remote func(ctx context.Context) error

	// InvalidateKeys, InvalidateKinds and InvalidatePatterns name cache entries to evict on commit.
	InvalidateKeys     []string
	InvalidateKinds    []string
	InvalidatePatterns []string
}

// NewCorrelationID returns a random correlation id.
func NewCorrelationID() string {
	return uuid.NewString()
}

// Run drives one mutation: apply, remote, then commit and invalidate or roll back.
// A remote failure is returned as *RemoteError after local state is restored.
// inv may be nil.
func Run[T any](ctx context.Context, q *Queue, inv Invalidator, m Mutation[T]) error {
	id := m.ID
	if id == "" {
		id = NewCorrelationID()
	}
	if m.Remote == nil {
		return &MisuseError{ID: id, Err: ErrNoRemote}
	}

	next, err := Apply(q, id, m.Next, m.Prior, m.Restore)
	if err != nil {
		return err
	}
	if m.Present != nil {
		m.Present(next)
	}

	if err := m.Remote(ctx); err != nil {
		q.Rollback(id)
		q.logger.Info("optimistic update reverted", "id", id, "err", err)
		return &RemoteError{ID: id, Err: err}
	}

	if !q.Commit(id) {
		// Reset while in flight. The remote write still happened, so the
		// cache is invalidated to pick it up on the next read.
		q.logger.Warn("remote succeeded after local reset", "id", id)
	}
	if inv != nil {
		for _, key := range m.InvalidateKeys {
			inv.Delete(key)
		}
		for _, kind := range m.InvalidateKinds {
			inv.InvalidateKind(kind)
		}
		for _, pattern := range m.InvalidatePatterns {
			inv.Invalidate(pattern)
		}
	}
	return nil
}
