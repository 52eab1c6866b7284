package optimistic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	keys     []string
	kinds    []string
	patterns []string
}

func (r *recordingInvalidator) Delete(key string) bool {
	r.keys = append(r.keys, key)
	return true
}

func (r *recordingInvalidator) Invalidate(pattern string) int {
	r.patterns = append(r.patterns, pattern)
	return 1
}

func (r *recordingInvalidator) InvalidateKind(kind string) int {
	r.kinds = append(r.kinds, kind)
	return 1
}

func TestRunSuccessCommitsAndInvalidates(t *testing.T) {
	q := NewQueue()
	inv := &recordingInvalidator{}
	local := "old"
	remoteCalls := 0

	err := Run(context.Background(), q, inv, Mutation[string]{
		ID:      "customers:c1",
		Next:    "new",
		Prior:   local,
		Present: func(v string) { local = v },
		Restore: func(v string) { local = v },
		Remote: func(context.Context) error {
			remoteCalls++
			assert.Equal(t, "new", local, "local state is updated before the remote call")
			return nil
		},
		InvalidateKeys:     []string{"customers:c1"},
		InvalidateKinds:    []string{"products"},
		InvalidatePatterns: []string{"c1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", local)
	assert.Equal(t, 1, remoteCalls)
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, []string{"customers:c1"}, inv.keys)
	assert.Equal(t, []string{"products"}, inv.kinds)
	assert.Equal(t, []string{"c1"}, inv.patterns)
}

func TestRunFailureRollsBack(t *testing.T) {
	q := NewQueue()
	inv := &recordingInvalidator{}
	local := 5
	boom := errors.New("network down")
	remoteCalls := 0

	err := Run(context.Background(), q, inv, Mutation[int]{
		ID:      "cart:u1",
		Next:    7,
		Prior:   local,
		Present: func(v int) { local = v },
		Restore: func(v int) { local = v },
		Remote: func(context.Context) error {
			remoteCalls++
			return boom
		},
		InvalidateKinds: []string{"cart"},
	})
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.False(t, IsMisuse(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 5, local)
	assert.Equal(t, 1, remoteCalls, "remote is attempted exactly once")
	assert.Empty(t, inv.kinds, "nothing is invalidated on failure")
	assert.Equal(t, 0, q.Len())
}

func TestRunMisuseNeverCallsRemote(t *testing.T) {
	q := NewQueue()
	_, err := Apply(q, "cart:u1", 1, 0, nil)
	require.NoError(t, err)

	called := false
	err = Run(context.Background(), q, nil, Mutation[int]{
		ID:   "cart:u1",
		Next: 2,
		Remote: func(context.Context) error {
			called = true
			return nil
		},
	})
	assert.ErrorIs(t, err, ErrPendingExists)
	assert.False(t, called)

	err = Run(context.Background(), q, nil, Mutation[int]{ID: "other"})
	assert.ErrorIs(t, err, ErrNoRemote)
	assert.Equal(t, 1, q.Len())
}

func TestRunGeneratesCorrelationID(t *testing.T) {
	q := NewQueue()
	err := Run(context.Background(), q, nil, Mutation[int]{
		Next: 1,
		Remote: func(context.Context) error {
			pending := q.Pending()
			require.Len(t, pending, 1)
			assert.Len(t, pending[0], 36)
			return nil
		},
	})
	require.NoError(t, err)
}

func TestRunResetWhileInFlight(t *testing.T) {
	q := NewQueue()
	inv := &recordingInvalidator{}
	local := "old"

	err := Run(context.Background(), q, inv, Mutation[string]{
		ID:      "e1",
		Next:    "new",
		Prior:   local,
		Present: func(v string) { local = v },
		Restore: func(v string) { local = v },
		Remote: func(context.Context) error {
			q.RollbackAll()
			return nil
		},
		InvalidateKinds: []string{"customers"},
	})
	require.NoError(t, err)
	assert.Equal(t, "old", local, "reset state is not overwritten by the late commit")
	assert.Equal(t, []string{"customers"}, inv.kinds)
}

func TestRunCancelledContextRollsBack(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	local := 1

	err := Run(ctx, q, nil, Mutation[int]{
		ID:      "e1",
		Next:    2,
		Prior:   1,
		Present: func(v int) { local = v },
		Restore: func(v int) { local = v },
		Remote:  func(ctx context.Context) error { return ctx.Err() },
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, local)
}
