package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/optimistic"
	"github.com/huangsam/storesync/internal/synccache"
	"github.com/huangsam/storesync/schema"
)

// cartKind is the cache key kind and correlation id prefix for carts.
const cartKind = "cart"

// CartSync keeps a user's local cart and its persisted row in step.
// Every mutation is applied locally first and rolled back if the write fails.
type CartSync struct {
	cart   *Cart
	store  contract.RecordStore
	cache  *synccache.Cache
	queue  *optimistic.Queue
	logger *slog.Logger
	now    func() time.Time
}

// NewCartSync wires a cart for userID to the shared cache and queue.
func NewCartSync(userID string, store contract.RecordStore, cache *synccache.Cache, queue *optimistic.Queue, logger *slog.Logger) *CartSync {
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	return &CartSync{
		cart:   NewCart(userID),
		store:  store,
		cache:  cache,
		queue:  queue,
		logger: logger.With("cart", userID),
		now:    time.Now,
	}
}

// Cart returns the local cart.
func (s *CartSync) Cart() *Cart {
	return s.cart
}

// CorrelationID is the optimistic-queue id of this cart; one write is in flight at a time.
func (s *CartSync) CorrelationID() string {
	return s.cacheKey().String()
}

func (s *CartSync) cacheKey() synccache.Key {
	return synccache.NewKey(cartKind, s.cart.UserID())
}

// Load replaces the local cart with the persisted one, read through the cache.
// A user without a persisted cart gets an empty one.
func (s *CartSync) Load(ctx context.Context) error {
	if s.queue.IsPending(s.CorrelationID()) {
		return &optimistic.MisuseError{ID: s.CorrelationID(), Err: optimistic.ErrPendingExists}
	}
	snap, err := synccache.Fetch(ctx, s.cache, s.cacheKey(), 0, s.fetch)
	if err != nil {
		return fmt.Errorf("failed to load cart: %w", err)
	}
	s.cart.Restore(snap)
	return nil
}

func (s *CartSync) fetch(ctx context.Context) (schema.CartSnapshot, error) {
	userID := s.cart.UserID()
	rec, err := s.store.Lookup(ctx, schema.CartsTable, schema.Predicate{"id": userID})
	if contract.IsNotFound(err) {
		return schema.CartSnapshot{UserID: userID}, nil
	}
	if err != nil {
		return schema.CartSnapshot{}, err
	}
	return schema.CartFromRecord(rec)
}

// AddLine adds qty units of a line and persists the cart.
func (s *CartSync) AddLine(ctx context.Context, id schema.LineIdentity, qty int, unitPrice schema.Money, fields schema.LineFields) error {
	return s.mutate(ctx, func(c *Cart) { c.AddLine(id, qty, unitPrice, fields) })
}

// SetQuantity sets the quantity of a line and persists the cart.
func (s *CartSync) SetQuantity(ctx context.Context, id schema.LineIdentity, qty int) error {
	return s.mutate(ctx, func(c *Cart) { c.SetQuantity(id, qty) })
}

// RemoveLine removes a line and persists the cart.
func (s *CartSync) RemoveLine(ctx context.Context, id schema.LineIdentity) error {
	return s.mutate(ctx, func(c *Cart) { c.RemoveLine(id) })
}

// mutate computes the next cart on a scratch copy and drives it through the queue.
func (s *CartSync) mutate(ctx context.Context, change func(*Cart)) error {
	prior := s.cart.Snapshot()
	scratch := CartFromSnapshot(prior)
	change(scratch)
	next := scratch.Snapshot()
	next.UpdatedAt = s.now().UTC().Truncate(time.Second)

	return optimistic.Run(ctx, s.queue, s.cache, optimistic.Mutation[schema.CartSnapshot]{
		ID:             s.CorrelationID(),
		Next:           next,
		Prior:          prior,
		Present:        s.cart.Restore,
		Restore:        s.cart.Restore,
		Remote:         func(ctx context.Context) error { return s.persist(ctx, next) },
		InvalidateKeys: []string{s.cacheKey().String()},
	})
}

// persist writes the cart row, creating it on first write.
func (s *CartSync) persist(ctx context.Context, snap schema.CartSnapshot) error {
	rec, err := snap.ToRecord()
	if err != nil {
		return err
	}
	patch := schema.Record{"lines": rec["lines"], "updated_at": rec["updated_at"]}

	_, err = s.store.Update(ctx, schema.CartsTable, snap.UserID, patch)
	if !contract.IsNotFound(err) {
		return err
	}
	_, err = s.store.Insert(ctx, schema.CartsTable, rec)
	if contract.IsConflict(err) {
		// Another session created the row between our update and insert.
		s.logger.Debug("cart row created concurrently, updating instead")
		_, err = s.store.Update(ctx, schema.CartsTable, snap.UserID, patch)
	}
	return err
}
