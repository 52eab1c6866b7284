// Package contract provides interfaces and shared utilities for the storesync internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/storesync/schema"
)

// RecordStore is the remote source of truth that the synchronization layer reconciles against.
// This allows the sync core to be tested without a live database.
//
// Every method reports failures as *StoreError so callers can tell a missing row
// (IsNotFound) and a uniqueness violation (IsConflict) apart from outages.
type RecordStore interface {
	// Lookup returns the single row of table matching where, or a not-found error.
	Lookup(ctx context.Context, table string, where schema.Predicate) (schema.Record, error)

	// List returns every row of table matching where, ordered by id.
	List(ctx context.Context, table string, where schema.Predicate) ([]schema.Record, error)

	// Insert creates a row and returns it as stored.
	Insert(ctx context.Context, table string, rec schema.Record) (schema.Record, error)

	// Update applies patch to the row with the given id and returns the updated row.
	Update(ctx context.Context, table string, id string, patch schema.Record) (schema.Record, error)

	// Status returns connection and size information about the store.
	Status(ctx context.Context) (schema.StoreStatus, error)

	// Close releases the underlying connection.
	Close() error
}
