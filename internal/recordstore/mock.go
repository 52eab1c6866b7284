package recordstore

import (
	"context"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// Lookup implements the RecordStore interface.
func (m *MockRecordStore) Lookup(ctx context.Context, table string, where schema.Predicate) (schema.Record, error) {
	args := m.Called(ctx, table, where)
	rec, _ := args.Get(0).(schema.Record)
	return rec, args.Error(1)
}

// List implements the RecordStore interface.
func (m *MockRecordStore) List(ctx context.Context, table string, where schema.Predicate) ([]schema.Record, error) {
	args := m.Called(ctx, table, where)
	recs, _ := args.Get(0).([]schema.Record)
	return recs, args.Error(1)
}

// Insert implements the RecordStore interface.
func (m *MockRecordStore) Insert(ctx context.Context, table string, rec schema.Record) (schema.Record, error) {
	args := m.Called(ctx, table, rec)
	out, _ := args.Get(0).(schema.Record)
	return out, args.Error(1)
}

// Update implements the RecordStore interface.
func (m *MockRecordStore) Update(ctx context.Context, table string, id string, patch schema.Record) (schema.Record, error) {
	args := m.Called(ctx, table, id, patch)
	out, _ := args.Get(0).(schema.Record)
	return out, args.Error(1)
}

// Status implements the RecordStore interface.
func (m *MockRecordStore) Status(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the RecordStore interface.
func (m *MockRecordStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
