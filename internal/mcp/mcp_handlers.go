package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	session *core.Session
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleEnsureProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	meta := schema.UserMetadata{
		Email:      request.GetString("email", ""),
		Attributes: map[string]string{},
	}
	if name := request.GetString("name", ""); name != "" {
		meta.Attributes["full_name"] = name
	}
	if whatsapp := request.GetString("whatsapp", ""); whatsapp != "" {
		meta.Attributes["whatsapp"] = whatsapp
	}

	res := h.session.SignIn(ctx, userID, meta)
	if res.Outcome == schema.ProfileError {
		return mcp.NewToolResultError(fmt.Sprintf("profile reconciliation failed: %s", res.Message())), nil
	}
	return jsonResult(res.View()), nil
}

func (h *toolHandler) handleGetCart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	cs := h.session.Cart(userID)
	if err := cs.Load(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cart: %v", err)), nil
	}
	return jsonResult(cartResult(cs.Cart().Snapshot())), nil
}

func (h *toolHandler) handleAddToCart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	productID := request.GetString("product_id", "")
	if userID == "" || productID == "" {
		return mcp.NewToolResultError("user_id and product_id are required"), nil
	}
	qty := request.GetInt("quantity", 1)
	if qty < 1 {
		return mcp.NewToolResultError("quantity must be at least 1"), nil
	}

	product, err := h.session.Catalog().Product(ctx, productID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to look up product: %v", err)), nil
	}
	condition := product.Condition
	if c := request.GetString("condition", ""); c != "" {
		if condition, err = schema.ParseCondition(c); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	cs := h.session.Cart(userID)
	if err := cs.Load(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cart: %v", err)), nil
	}
	id := schema.LineIdentity{ProductID: productID, Condition: condition}
	fields := schema.LineFields{Name: product.Name, ImageURL: product.ImageURL}
	if err := cs.AddLine(ctx, id, qty, product.Price, fields); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update cart: %v", err)), nil
	}
	return jsonResult(cartResult(cs.Cart().Snapshot())), nil
}

func (h *toolHandler) handleSetCartQuantity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := request.GetString("user_id", "")
	productID := request.GetString("product_id", "")
	condition := request.GetString("condition", "")
	if userID == "" || productID == "" || condition == "" {
		return mcp.NewToolResultError("user_id, product_id and condition are required"), nil
	}
	cond, err := schema.ParseCondition(condition)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	qty := request.GetInt("quantity", 0)

	cs := h.session.Cart(userID)
	if err := cs.Load(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load cart: %v", err)), nil
	}
	id := schema.LineIdentity{ProductID: productID, Condition: cond}
	if err := cs.SetQuantity(ctx, id, qty); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update cart: %v", err)), nil
	}
	return jsonResult(cartResult(cs.Cart().Snapshot())), nil
}

func (h *toolHandler) handleListProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := h.session.Catalog().Products(ctx, request.GetString("category", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list products: %v", err)), nil
	}
	if products == nil {
		products = []schema.Product{}
	}
	return jsonResult(products), nil
}

func (h *toolHandler) handleStoreStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := h.session.Store().Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get store status: %v", err)), nil
	}
	return jsonResult(status), nil
}

// cartPayload is the tool-facing shape of a cart.
type cartPayload struct {
	schema.CartSnapshot
	Total        schema.Money `json:"total"`
	TotalDisplay string       `json:"total_display"`
}

func cartResult(snap schema.CartSnapshot) cartPayload {
	if snap.Lines == nil {
		snap.Lines = []schema.CartLine{}
	}
	return cartPayload{CartSnapshot: snap, Total: snap.Total(), TotalDisplay: snap.Total().String()}
}
