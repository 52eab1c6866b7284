// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/storesync/core"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the storesync MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(session *core.Session) *server.MCPServer {
	s := server.NewMCPServer(
		"Storesync Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{session: session}

	// --- 1. Tool: ensure_profile ---
	s.AddTool(mcp.NewTool("ensure_profile",
		mcp.WithDescription("Make sure a signed-in user has exactly one profile row, creating it when missing."),
		mcp.WithString("user_id", mcp.Description("The authenticated user id."), mcp.Required()),
		mcp.WithString("email", mcp.Description("The user's email address.")),
		mcp.WithString("name", mcp.Description("Full name reported by the identity provider.")),
		mcp.WithString("whatsapp", mcp.Description("WhatsApp contact number.")),
	), h.handleEnsureProfile)

	// --- 2. Tool: get_cart ---
	s.AddTool(mcp.NewTool("get_cart",
		mcp.WithDescription("Return the persisted cart of a user with its total."),
		mcp.WithString("user_id", mcp.Description("The cart owner."), mcp.Required()),
	), h.handleGetCart)

	// --- 3. Tool: add_to_cart ---
	s.AddTool(mcp.NewTool("add_to_cart",
		mcp.WithDescription("Add units of a product to a user's cart. The change is rolled back if it cannot be saved."),
		mcp.WithString("user_id", mcp.Description("The cart owner."), mcp.Required()),
		mcp.WithString("product_id", mcp.Description("The product to add."), mcp.Required()),
		mcp.WithString("condition", mcp.Description("Product condition. Defaults to the product's own condition."), mcp.Enum("new", "used")),
		mcp.WithNumber("quantity", mcp.Description("Units to add. Defaults to 1.")),
	), h.handleAddToCart)

	// --- 4. Tool: set_cart_quantity ---
	s.AddTool(mcp.NewTool("set_cart_quantity",
		mcp.WithDescription("Set the quantity of a cart line. Zero removes the line."),
		mcp.WithString("user_id", mcp.Description("The cart owner."), mcp.Required()),
		mcp.WithString("product_id", mcp.Description("The product of the line."), mcp.Required()),
		mcp.WithString("condition", mcp.Description("Condition of the line."), mcp.Enum("new", "used"), mcp.Required()),
		mcp.WithNumber("quantity", mcp.Description("The new quantity."), mcp.Required()),
	), h.handleSetCartQuantity)

	// --- 5. Tool: list_products ---
	s.AddTool(mcp.NewTool("list_products",
		mcp.WithDescription("List catalog products, optionally within one category. Results may be up to the cache TTL old."),
		mcp.WithString("category", mcp.Description("Category to filter by.")),
	), h.handleListProducts)

	// --- 6. Tool: store_status ---
	s.AddTool(mcp.NewTool("store_status",
		mcp.WithDescription("Report the record store backend and row counts per table."),
	), h.handleStoreStatus)

	return s
}

// StartMCPServer starts the storesync MCP server on stdio.
func StartMCPServer(_ context.Context, session *core.Session) error {
	s := NewMCPServer(session)
	return server.ServeStdio(s)
}
