package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/optimistic"
	"github.com/huangsam/storesync/internal/recordstore"
	"github.com/huangsam/storesync/internal/synccache"
	"github.com/huangsam/storesync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCartSync(store contract.RecordStore) (*CartSync, *synccache.Cache, *optimistic.Queue) {
	cache := synccache.New()
	queue := optimistic.NewQueue()
	return NewCartSync("u1", store, cache, queue, nil), cache, queue
}

func unavailable(op string) error {
	return contract.NewStoreError(contract.ErrCodeUnavailable, op, schema.CartsTable, errors.New("connection refused"))
}

// TestCartSyncPersists tests that mutations reach the store and survive a reload.
func TestCartSyncPersists(t *testing.T) {
	ctx := context.Background()
	store := recordstore.NewMemStore()
	cs, cache, queue := newTestCartSync(store)

	require.NoError(t, cs.Load(ctx))
	assert.Empty(t, cs.Cart().Lines())

	require.NoError(t, cs.AddLine(ctx, phoneNew, 1, 129900, schema.LineFields{Name: "Phone A"}))
	require.NoError(t, cs.AddLine(ctx, phoneNew, 1, 129900, schema.LineFields{Name: "Phone A"}))
	assert.Equal(t, schema.Money(259800), cs.Cart().TotalPrice())
	assert.Zero(t, queue.Len())

	rec, err := store.Lookup(ctx, schema.CartsTable, schema.Predicate{"id": "u1"})
	require.NoError(t, err)
	snap, err := schema.CartFromRecord(rec)
	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, 2, snap.Lines[0].Quantity)
	assert.Equal(t, "Phone A", snap.Lines[0].Name)
	assert.False(t, snap.UpdatedAt.IsZero())

	_, cached := cache.Get(cs.CorrelationID())
	assert.False(t, cached, "commit must evict the cached cart")

	other, otherCache, _ := newTestCartSync(store)
	require.NoError(t, other.Load(ctx))
	assert.Equal(t, schema.Money(259800), other.Cart().TotalPrice())

	require.NoError(t, cs.SetQuantity(ctx, phoneNew, 0))
	otherCache.Clear()
	require.NoError(t, other.Load(ctx))
	assert.Empty(t, other.Cart().Lines())
}

// TestCartSyncRollback tests that a failed write restores the previous cart exactly.
func TestCartSyncRollback(t *testing.T) {
	ctx := context.Background()
	store := &recordstore.MockRecordStore{}
	cs, _, queue := newTestCartSync(store)

	store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).
		Return(schema.Record{"id": "u1"}, nil).Once()
	require.NoError(t, cs.AddLine(ctx, phoneNew, 1, 129900, schema.LineFields{}))
	before := cs.Cart().Snapshot()

	store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).
		Return(nil, unavailable("update")).Once()
	err := cs.AddLine(ctx, phoneUsed, 1, 89900, schema.LineFields{})

	require.Error(t, err)
	assert.True(t, optimistic.IsRemote(err))
	assert.Equal(t, before, cs.Cart().Snapshot())
	assert.Equal(t, schema.Money(129900), cs.Cart().TotalPrice())
	assert.Zero(t, queue.Len())
	store.AssertExpectations(t)
}

// TestCartSyncCreatesRow tests the first write of a user without a cart row.
func TestCartSyncCreatesRow(t *testing.T) {
	ctx := context.Background()

	t.Run("insert after not found", func(t *testing.T) {
		store := &recordstore.MockRecordStore{}
		cs, _, _ := newTestCartSync(store)
		notFound := contract.NewStoreError(contract.ErrCodeNotFound, "update", schema.CartsTable, nil)

		store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).Return(nil, notFound).Once()
		store.On("Insert", mock.Anything, schema.CartsTable, mock.Anything).Return(schema.Record{"id": "u1"}, nil).Once()

		require.NoError(t, cs.AddLine(ctx, caseNew, 1, 1500, schema.LineFields{}))
		store.AssertExpectations(t)
	})

	t.Run("row created concurrently", func(t *testing.T) {
		store := &recordstore.MockRecordStore{}
		cs, _, _ := newTestCartSync(store)
		notFound := contract.NewStoreError(contract.ErrCodeNotFound, "update", schema.CartsTable, nil)
		conflict := contract.NewStoreError(contract.ErrCodeConflict, "insert", schema.CartsTable, nil)

		store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).Return(nil, notFound).Once()
		store.On("Insert", mock.Anything, schema.CartsTable, mock.Anything).Return(nil, conflict).Once()
		store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).Return(schema.Record{"id": "u1"}, nil).Once()

		require.NoError(t, cs.AddLine(ctx, caseNew, 1, 1500, schema.LineFields{}))
		assert.Equal(t, 1, cs.Cart().Count())
		store.AssertExpectations(t)
	})
}

// TestCartSyncPendingWrite tests that a cart with a write in flight rejects reloads and new writes.
func TestCartSyncPendingWrite(t *testing.T) {
	ctx := context.Background()
	store := &recordstore.MockRecordStore{}
	cs, _, queue := newTestCartSync(store)

	release := make(chan struct{})
	store.On("Update", mock.Anything, schema.CartsTable, "u1", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(schema.Record{"id": "u1"}, nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- cs.AddLine(ctx, phoneNew, 1, 129900, schema.LineFields{})
	}()
	require.Eventually(t, func() bool { return queue.IsPending(cs.CorrelationID()) }, time.Second, time.Millisecond)

	// Applied optimistically before the write resolved.
	assert.Equal(t, 1, cs.Cart().Count())

	err := cs.Load(ctx)
	assert.True(t, optimistic.IsMisuse(err))
	assert.ErrorIs(t, err, optimistic.ErrPendingExists)

	err = cs.AddLine(ctx, caseNew, 1, 1500, schema.LineFields{})
	assert.ErrorIs(t, err, optimistic.ErrPendingExists)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, cs.Cart().Count())
	assert.False(t, queue.IsPending(cs.CorrelationID()))
	store.AssertExpectations(t)
}

// TestCartSyncLoadFailure tests that a failed read is reported and not cached.
func TestCartSyncLoadFailure(t *testing.T) {
	ctx := context.Background()
	store := &recordstore.MockRecordStore{}
	cs, cache, _ := newTestCartSync(store)

	store.On("Lookup", mock.Anything, schema.CartsTable, schema.Predicate{"id": "u1"}).
		Return(nil, unavailable("lookup")).Once()
	require.Error(t, cs.Load(ctx))
	assert.Zero(t, cache.Len())

	store.On("Lookup", mock.Anything, schema.CartsTable, schema.Predicate{"id": "u1"}).
		Return(schema.Record{"id": "u1", "lines": `[{"identity":{"product_id":"case","condition":"new"},"quantity":2,"unit_price":1500}]`}, nil).Once()
	require.NoError(t, cs.Load(ctx))
	assert.Equal(t, schema.Money(3000), cs.Cart().TotalPrice())
	store.AssertExpectations(t)
}
