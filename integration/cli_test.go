//go:build basic || database

package integration

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/storesync/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cartOutput is the JSON shape printed by the cart commands.
type cartOutput struct {
	Lines []schema.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total int64             `json:"total"`
}

// exerciseCLI drives a full storefront session through the binary against
// the backend described by env. The store must be empty.
func exerciseCLI(t *testing.T, env []string) {
	t.Helper()
	run := func(args ...string) string {
		t.Helper()
		out, err := runStoresync(t, env, args...)
		require.NoError(t, err, "storesync %v", args)
		return out
	}

	run("products", "add", "--id", "phoneA", "--name", "Phone A", "--category", "phones", "--price", "1299.00", "--stock", "5")
	run("products", "add", "--id", "case", "--name", "Case", "--category", "accessories", "--price", "15", "--stock", "2")

	var products []schema.Product
	require.NoError(t, json.Unmarshal([]byte(run("products", "list", "--category", "phones", "--output", "json")), &products))
	require.Len(t, products, 1)
	assert.Equal(t, schema.Money(129900), products[0].Price)

	var view schema.ProfileView
	require.NoError(t, json.Unmarshal([]byte(run("profile", "ensure", "u1", "--email", "ana@example.com", "--output", "json")), &view))
	assert.Equal(t, schema.ProfileCreated, view.Outcome)
	assert.Equal(t, "ana", view.DisplayName)
	require.NoError(t, json.Unmarshal([]byte(run("profile", "ensure", "u1", "--email", "ana@example.com", "--output", "json")), &view))
	assert.Equal(t, schema.ProfileExisting, view.Outcome)

	// Each command is a fresh process, so the cart must round-trip through the store.
	run("cart", "add", "u1", "phoneA")
	run("cart", "add", "u1", "phoneA")
	run("cart", "add", "u1", "case", "--condition", "used")

	var cart cartOutput
	require.NoError(t, json.Unmarshal([]byte(run("cart", "show", "u1", "--output", "json")), &cart))
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, 3, cart.Count)
	assert.Equal(t, int64(2*129900+1500), cart.Total)

	require.NoError(t, json.Unmarshal([]byte(run("cart", "set", "u1", "phoneA", "0", "--output", "json")), &cart))
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "case", cart.Lines[0].Identity.ProductID)

	assert.Contains(t, run("cart", "checkout", "u1"), "15.00")

	var status schema.StoreStatus
	require.NoError(t, json.Unmarshal([]byte(run("store", "status", "--output", "json")), &status))
	assert.True(t, status.Connected)
	assert.Equal(t, int64(2), status.TableSizes[schema.ProductsTable])
	assert.Equal(t, int64(1), status.TableSizes[schema.ProfilesTable])
	assert.Equal(t, int64(1), status.TableSizes[schema.CartsTable])

	run("store", "export", "--dir", t.TempDir())

	var migration schema.MigrationResult
	require.NoError(t, json.Unmarshal([]byte(run("store", "migrate", "--target-version", "0", "--output", "json")), &migration))
	assert.True(t, migration.Changed)
	assert.Equal(t, uint(0), migration.To)

	run("store", "clear")
}
