package contract

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreErrorClassification(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name         string
		err          error
		wantNotFound bool
		wantConflict bool
	}{
		{"nil", nil, false, false},
		{"plain error", base, false, false},
		{"not found", NewStoreError(ErrCodeNotFound, "lookup", "profiles", nil), true, false},
		{"conflict", NewStoreError(ErrCodeConflict, "insert", "profiles", base), false, true},
		{"wrapped not found", fmt.Errorf("outer: %w", NewStoreError(ErrCodeNotFound, "lookup", "carts", nil)), true, false},
		{"unavailable", NewStoreError(ErrCodeUnavailable, "lookup", "profiles", base), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNotFound, IsNotFound(tt.err))
			assert.Equal(t, tt.wantConflict, IsConflict(tt.err))
		})
	}
}

func TestStoreErrorMessage(t *testing.T) {
	err := NewStoreError(ErrCodeConflict, "insert", "profiles", errors.New("duplicate key"))
	assert.Equal(t, "insert profiles: CONFLICT: duplicate key", err.Error())
	assert.ErrorIs(t, err, err.Err)

	bare := NewStoreError(ErrCodeNotFound, "lookup", "carts", nil)
	assert.Equal(t, "lookup carts: NOT_FOUND", bare.Error())
}
