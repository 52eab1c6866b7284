package recordstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// MemStore is a RecordStore held in process memory. It backs the none backend
// and gives the same validation and conflict semantics as SQLStore.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]schema.Record
}

var _ contract.RecordStore = &MemStore{} // Compile-time check

// NewMemStore creates an empty in-memory store with every known table.
func NewMemStore() *MemStore {
	m := &MemStore{tables: make(map[string]map[string]schema.Record)}
	for _, table := range schema.AllTables {
		m.tables[table] = make(map[string]schema.Record)
	}
	return m
}

// Lookup implements contract.RecordStore.
func (m *MemStore) Lookup(ctx context.Context, table string, where schema.Predicate) (schema.Record, error) {
	rows, err := m.match("lookup", table, where)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, contract.NewStoreError(contract.ErrCodeNotFound, "lookup", table, nil)
	}
	return rows[0], nil
}

// List implements contract.RecordStore.
func (m *MemStore) List(ctx context.Context, table string, where schema.Predicate) ([]schema.Record, error) {
	return m.match("list", table, where)
}

// Insert implements contract.RecordStore.
func (m *MemStore) Insert(ctx context.Context, table string, rec schema.Record) (schema.Record, error) {
	def, err := lookupTable(table)
	if err != nil {
		return nil, invalid("insert", table, err)
	}
	if err := def.checkColumns(rec); err != nil {
		return nil, invalid("insert", table, err)
	}
	row := def.normalizeRecord(rec, true)
	id := row.String("id")
	if id == "" {
		return nil, invalid("insert", table, errors.New("id is required"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tables[table][id]; exists {
		return nil, contract.NewStoreError(contract.ErrCodeConflict, "insert", table, errors.New("duplicate id "+id))
	}
	m.tables[table][id] = row
	return maps.Clone(row), nil
}

// Update implements contract.RecordStore.
func (m *MemStore) Update(ctx context.Context, table string, id string, patch schema.Record) (schema.Record, error) {
	def, err := lookupTable(table)
	if err != nil {
		return nil, invalid("update", table, err)
	}
	if err := def.checkColumns(patch); err != nil {
		return nil, invalid("update", table, err)
	}
	if id == "" {
		return nil, invalid("update", table, errors.New("id is required"))
	}
	changes := def.normalizeRecord(patch, false)
	delete(changes, "id")

	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.tables[table][id]
	if !ok {
		return nil, contract.NewStoreError(contract.ErrCodeNotFound, "update", table, nil)
	}
	maps.Copy(row, changes)
	return maps.Clone(row), nil
}

// Status implements contract.RecordStore.
func (m *MemStore) Status(ctx context.Context) (schema.StoreStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := schema.StoreStatus{
		Backend:    string(schema.NoneBackend),
		Connected:  true,
		TableSizes: make(map[string]int64, len(m.tables)),
	}
	for table, rows := range m.tables {
		status.TableSizes[table] = int64(len(rows))
	}
	return status, nil
}

// Close implements contract.RecordStore. The data is kept until the process exits.
func (m *MemStore) Close() error {
	return nil
}

func (m *MemStore) match(op, table string, where schema.Predicate) ([]schema.Record, error) {
	def, err := lookupTable(table)
	if err != nil {
		return nil, invalid(op, table, err)
	}
	if err := def.checkColumns(where); err != nil {
		return nil, invalid(op, table, err)
	}
	want := make(map[string]any, len(where))
	for name, v := range where {
		c, _ := def.column(name)
		want[name] = c.normalize(v)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Sorted(maps.Keys(m.tables[table]))
	var results []schema.Record
	for _, id := range ids {
		row := m.tables[table][id]
		matched := true
		for name, v := range want {
			if row[name] != v {
				matched = false
				break
			}
		}
		if matched {
			results = append(results, maps.Clone(row))
		}
	}
	return results, nil
}
