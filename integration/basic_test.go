//go:build basic

package integration

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoresyncWithSQLite runs the CLI against a throwaway SQLite file.
func TestStoresyncWithSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "storesync.db")
	exerciseCLI(t, []string{
		"STORESYNC_BACKEND=sqlite",
		"STORESYNC_DB_CONNECT=" + dbPath,
	})
	assert.NoFileExists(t, dbPath, "store clear should delete the SQLite file")
}

// TestStoresyncRejectsBadConfig checks that validation fails before any store is opened.
func TestStoresyncRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		args []string
	}{
		{"unknown backend", []string{"STORESYNC_BACKEND=redis"}, []string{"store", "status"}},
		{"mysql without dsn", []string{"STORESYNC_BACKEND=mysql"}, []string{"store", "status"}},
		{"cache ttl too long", []string{"STORESYNC_BACKEND=none", "STORESYNC_CACHE_TTL=48h"}, []string{"products", "list"}},
		{"bad output", []string{"STORESYNC_BACKEND=none"}, []string{"products", "list", "--output", "xml"}},
		{"in-memory sqlite", []string{"STORESYNC_BACKEND=sqlite", "STORESYNC_DB_CONNECT=:memory:"}, []string{"store", "status"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runStoresync(t, tt.env, tt.args...)
			require.Error(t, err)
		})
	}
}
