package optimistic

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// holder is a stand-in for locally held UI state.
type holder struct {
	mu    sync.Mutex
	value []byte
}

func (h *holder) set(v []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.value = bytes.Clone(v)
}

func (h *holder) get() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Clone(h.value)
}

func TestApplyCommitKeepsAppliedValue(t *testing.T) {
	q := NewQueue()
	h := &holder{value: []byte("old")}

	prior := h.get()
	next, err := Apply(q, "e1", []byte("new"), prior, h.set)
	require.NoError(t, err)
	h.set(next)

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.IsPending("e1"))
	assert.True(t, q.Commit("e1"))
	assert.False(t, q.IsPending("e1"))
	assert.Equal(t, []byte("new"), h.get())
	assert.Equal(t, 0, q.Len())
}

func TestApplyRollbackRestoresExactly(t *testing.T) {
	q := NewQueue()
	original := []byte{0x00, 0x01, 0xfe, 0xff}
	h := &holder{value: bytes.Clone(original)}

	next, err := Apply(q, "e1", []byte("changed"), h.get(), h.set)
	require.NoError(t, err)
	h.set(next)

	assert.True(t, q.Rollback("e1"))
	assert.Equal(t, original, h.get())
}

func TestDuplicateApplyIsMisuse(t *testing.T) {
	q := NewQueue()
	_, err := Apply(q, "e1", 2, 1, nil)
	require.NoError(t, err)

	_, err = Apply(q, "e1", 3, 2, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPendingExists)
	assert.True(t, IsMisuse(err))
	assert.False(t, IsRemote(err))
	assert.Equal(t, 1, q.Len(), "the original entry must be untouched")
}

func TestApplyAgainAfterResolution(t *testing.T) {
	q := NewQueue()
	_, err := Apply(q, "e1", 2, 1, nil)
	require.NoError(t, err)
	q.Commit("e1")

	_, err = Apply(q, "e1", 3, 2, nil)
	assert.NoError(t, err)
}

func TestResolutionIsIdempotent(t *testing.T) {
	q := NewQueue()
	restores := 0
	_, err := Apply(q, "e1", 2, 1, func(int) { restores++ })
	require.NoError(t, err)

	assert.True(t, q.Rollback("e1"))
	assert.False(t, q.Rollback("e1"))
	assert.False(t, q.Commit("e1"), "commit after rollback is a no-op")
	assert.Equal(t, 1, restores)

	_, err = Apply(q, "e2", 2, 1, func(int) { restores++ })
	require.NoError(t, err)
	assert.True(t, q.Commit("e2"))
	assert.False(t, q.Commit("e2"))
	assert.False(t, q.Rollback("e2"), "rollback after commit must not restore")
	assert.Equal(t, 1, restores)

	assert.False(t, q.Commit("unknown"))
	assert.False(t, q.Rollback("unknown"))
}

func TestIndependentEntities(t *testing.T) {
	q := NewQueue()
	a := &holder{value: []byte("a0")}
	b := &holder{value: []byte("b0")}

	na, err := Apply(q, "a", []byte("a1"), a.get(), a.set)
	require.NoError(t, err)
	a.set(na)
	nb, err := Apply(q, "b", []byte("b1"), b.get(), b.set)
	require.NoError(t, err)
	b.set(nb)

	q.Rollback("a")
	q.Commit("b")

	assert.Equal(t, []byte("a0"), a.get())
	assert.Equal(t, []byte("b1"), b.get())
}

func TestRollbackAllRestoresNewestFirst(t *testing.T) {
	q := NewQueue()
	var order []string
	for _, id := range []string{"first", "second", "third"} {
		_, err := Apply(q, id, 1, 0, func(int) { order = append(order, id) })
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"first", "second", "third"}, q.Pending())

	assert.Equal(t, 3, q.RollbackAll())
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, q.Len())

	assert.False(t, q.Commit("second"), "late commit after reset is ignored")
	assert.Equal(t, 0, q.RollbackAll())
}

func TestResetIDsAreForgottenOnResolution(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"ok", "failed"} {
		_, err := Apply(q, id, 1, 0, nil)
		require.NoError(t, err)
	}
	require.Equal(t, 2, q.RollbackAll())
	assert.Len(t, q.reset, 2)

	assert.False(t, q.Commit("ok"))
	assert.False(t, q.Rollback("failed"), "the update was already restored by the reset")
	assert.Empty(t, q.reset)
}

func TestRestoreMayReenterQueue(t *testing.T) {
	q := NewQueue()
	_, err := Apply(q, "e1", 1, 0, func(int) {
		// restore runs outside the lock
		assert.Equal(t, 0, q.Len())
	})
	require.NoError(t, err)
	assert.True(t, q.Rollback("e1"))
}

func TestAge(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	q := NewQueue(WithClock(func() time.Time { return now }))

	_, err := Apply(q, "e1", 1, 0, nil)
	require.NoError(t, err)
	now = now.Add(3 * time.Second)

	age, ok := q.Age("e1")
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, age)

	_, ok = q.Age("missing")
	assert.False(t, ok)
}

func TestConcurrentDistinctIDs(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := NewCorrelationID()
			_, err := Apply(q, id, i+1, i, nil)
			assert.NoError(t, err)
			if i%2 == 0 {
				q.Commit(id)
			} else {
				q.Rollback(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, q.Len())
}
