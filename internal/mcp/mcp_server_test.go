package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/internal/recordstore"
	mcp_internal "github.com/huangsam/storesync/internal/mcp"
	"github.com/huangsam/storesync/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	store := recordstore.NewMemStore()
	_, err := store.Insert(context.Background(), schema.ProductsTable, schema.Product{
		ID: "phoneA", Name: "Phone A", Category: "phones", Condition: schema.NewCondition, Price: 129900, Stock: 5,
	}.ToRecord())
	require.NoError(t, err)
	return mcp_internal.NewMCPServer(core.NewSession(store, nil, nil, nil))
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("ensure_profile missing user_id", func(t *testing.T) {
		res := call(t, s, "ensure_profile", map[string]any{"email": "ana@example.com"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "user_id is required")
	})

	t.Run("add_to_cart unknown product", func(t *testing.T) {
		res := call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "nope"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "failed to look up product")
	})

	t.Run("add_to_cart invalid quantity", func(t *testing.T) {
		res := call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA", "quantity": 0.0})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "quantity must be at least 1")
	})

	t.Run("set_cart_quantity missing condition", func(t *testing.T) {
		res := call(t, s, "set_cart_quantity", map[string]any{"user_id": "u1", "product_id": "phoneA", "quantity": 1.0})
		assert.True(t, res.IsError)
	})

	t.Run("add_to_cart invalid condition", func(t *testing.T) {
		res := call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA", "condition": "refurbished"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid condition")
	})

	t.Run("set_cart_quantity invalid condition", func(t *testing.T) {
		res := call(t, s, "set_cart_quantity", map[string]any{
			"user_id": "u1", "product_id": "phoneA", "condition": "broken", "quantity": 1.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid condition")
	})
}

func TestMCPServerHandlers_Profile(t *testing.T) {
	s := newTestServer(t)
	args := map[string]any{"user_id": "u1", "email": "ana@example.com", "name": "Ana Souza"}

	var view schema.ProfileView
	res := call(t, s, "ensure_profile", args)
	require.False(t, res.IsError, text(res))
	require.NoError(t, json.Unmarshal([]byte(text(res)), &view))
	assert.Equal(t, schema.ProfileCreated, view.Outcome)
	assert.Equal(t, "Ana Souza", view.DisplayName)

	res = call(t, s, "ensure_profile", args)
	require.NoError(t, json.Unmarshal([]byte(text(res)), &view))
	assert.Equal(t, schema.ProfileExisting, view.Outcome)
}

func TestMCPServerHandlers_Cart(t *testing.T) {
	s := newTestServer(t)

	type cart struct {
		Lines []schema.CartLine `json:"lines"`
		Total int64             `json:"total"`
	}
	decode := func(res *mcp.CallToolResult) cart {
		t.Helper()
		require.False(t, res.IsError, text(res))
		var c cart
		require.NoError(t, json.Unmarshal([]byte(text(res)), &c))
		return c
	}

	c := decode(call(t, s, "get_cart", map[string]any{"user_id": "u1"}))
	assert.Empty(t, c.Lines)

	decode(call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA"}))
	c = decode(call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA"}))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
	assert.Equal(t, "Phone A", c.Lines[0].Name)
	assert.Equal(t, int64(259800), c.Total)

	// Conditions are case-insensitive, so "New" merges into the existing line.
	c = decode(call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA", "condition": "New"}))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, schema.NewCondition, c.Lines[0].Identity.Condition)

	c = decode(call(t, s, "add_to_cart", map[string]any{"user_id": "u1", "product_id": "phoneA", "condition": "used"}))
	assert.Len(t, c.Lines, 2)

	c = decode(call(t, s, "set_cart_quantity", map[string]any{
		"user_id": "u1", "product_id": "phoneA", "condition": "new", "quantity": 0.0,
	}))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, schema.UsedCondition, c.Lines[0].Identity.Condition)

	c = decode(call(t, s, "get_cart", map[string]any{"user_id": "u1"}))
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, int64(129900), c.Total)
}

func TestMCPServerHandlers_Catalog(t *testing.T) {
	s := newTestServer(t)

	res := call(t, s, "list_products", map[string]any{"category": "phones"})
	require.False(t, res.IsError)
	var products []schema.Product
	require.NoError(t, json.Unmarshal([]byte(text(res)), &products))
	require.Len(t, products, 1)
	assert.Equal(t, schema.Money(129900), products[0].Price)

	res = call(t, s, "list_products", map[string]any{"category": "tablets"})
	assert.Equal(t, "[]", text(res))

	res = call(t, s, "store_status", nil)
	require.False(t, res.IsError)
	var status schema.StoreStatus
	require.NoError(t, json.Unmarshal([]byte(text(res)), &status))
	assert.Equal(t, "none", status.Backend)
	assert.Equal(t, int64(1), status.TableSizes[schema.ProductsTable])
}
