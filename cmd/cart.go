package cmd

import (
	"fmt"
	"strconv"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/internal/outwriter"
	"github.com/huangsam/storesync/schema"
	"github.com/spf13/cobra"
)

// cartCmd is the parent command for cart operations.
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change a user's cart",
	Long: `Work with the persisted cart of a user.

Every change is applied locally first and saved right away. When the
save fails, the cart goes back to what it was and the command fails.

Subcommands:
  show     - Print the cart with its total
  add      - Add units of a product
  set      - Set the quantity of a line (0 removes it)
  remove   - Remove a line
  checkout - Price the cart against the record store

Examples:
  # Add two new phones and print the cart
  storesync cart add u-123 phoneA --qty 2

  # Drop the used variant of a product
  storesync cart remove u-123 phoneA --condition used`,
}

// cartShowCmd prints a cart.
var cartShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Print the cart of a user",
	Long: `Print every line of a user's cart with its subtotal and the cart total.

Examples:
  storesync cart show u-123
  storesync cart show u-123 --output csv --output-file cart.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		cs, err := loadCart(args[0])
		if err != nil {
			return err
		}
		return outwriter.NewOutWriter(cfg).WriteCart(cs.Cart().Snapshot())
	},
}

// cartAddCmd adds a product to a cart.
var cartAddCmd = &cobra.Command{
	Use:   "add <user-id> <product-id>",
	Short: "Add units of a product to the cart",
	Long: `Add units of a catalog product to a user's cart. Adding a product that
is already in the cart with the same condition raises its quantity.
The name, image and price of the line come from the catalog.

Examples:
  storesync cart add u-123 phoneA
  storesync cart add u-123 phoneA --qty 2 --condition used`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, _ := cmd.Flags().GetInt("qty")
		if qty < 1 {
			return fmt.Errorf("--qty must be at least 1 (received %d)", qty)
		}
		product, err := session.Catalog().Product(rootCtx, args[1])
		if err != nil {
			return fmt.Errorf("failed to look up product %s: %w", args[1], err)
		}
		condition := product.Condition
		if c, _ := cmd.Flags().GetString("condition"); c != "" {
			if condition, err = schema.ParseCondition(c); err != nil {
				return err
			}
		}

		cs, err := loadCart(args[0])
		if err != nil {
			return err
		}
		id := schema.LineIdentity{ProductID: product.ID, Condition: condition}
		fields := schema.LineFields{Name: product.Name, ImageURL: product.ImageURL}
		if err := cs.AddLine(rootCtx, id, qty, product.Price, fields); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		return outwriter.NewOutWriter(cfg).WriteCart(cs.Cart().Snapshot())
	},
}

// cartSetCmd sets the quantity of a line.
var cartSetCmd = &cobra.Command{
	Use:   "set <user-id> <product-id> <quantity>",
	Short: "Set the quantity of a cart line",
	Long: `Set the quantity of the line matching the product and condition.
A quantity of 0 or less removes the line. Setting a line that is not in
the cart does nothing.

Examples:
  storesync cart set u-123 phoneA 3
  storesync cart set u-123 phoneA 0 --condition used`,
	Args:    cobra.ExactArgs(3),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid quantity %q: %w", args[2], err)
		}
		id, err := lineIdentity(cmd, args[1])
		if err != nil {
			return err
		}
		cs, err := loadCart(args[0])
		if err != nil {
			return err
		}
		if err := cs.SetQuantity(rootCtx, id, qty); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		return outwriter.NewOutWriter(cfg).WriteCart(cs.Cart().Snapshot())
	},
}

// cartRemoveCmd removes a line.
var cartRemoveCmd = &cobra.Command{
	Use:   "remove <user-id> <product-id>",
	Short: "Remove a line from the cart",
	Long: `Remove the line matching the product and condition. Removing a line
that is not in the cart is not an error.

Examples:
  storesync cart remove u-123 phoneA
  storesync cart remove u-123 phoneA --condition used`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := lineIdentity(cmd, args[1])
		if err != nil {
			return err
		}
		cs, err := loadCart(args[0])
		if err != nil {
			return err
		}
		if err := cs.RemoveLine(rootCtx, id); err != nil {
			return fmt.Errorf("failed to update cart: %w", err)
		}
		return outwriter.NewOutWriter(cfg).WriteCart(cs.Cart().Snapshot())
	},
}

// cartCheckoutCmd prices a cart with fresh prices.
var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout <user-id>",
	Short: "Price the cart with current catalog prices",
	Long: `Compute the amount to charge for a user's cart. Unlike "cart show",
every price is read from the record store and never from the cache, so
a price changed since the product was added is honored.

Examples:
  storesync cart checkout u-123`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		cs, err := loadCart(args[0])
		if err != nil {
			return err
		}
		snap := cs.Cart().Snapshot()
		total, err := session.Catalog().CheckoutTotal(rootCtx, snap.Lines)
		if err != nil {
			return err
		}
		cmd.Printf("💳 Checkout total for %s: %s (cart shows %s)\n", args[0], total, snap.Total())
		return nil
	},
}

// loadCart returns the user's cart synced with the record store.
// Mutations must follow a load or they would overwrite the stored cart.
func loadCart(userID string) (*core.CartSync, error) {
	cs := session.Cart(userID)
	if err := cs.Load(rootCtx); err != nil {
		return nil, fmt.Errorf("failed to load cart of %s: %w", userID, err)
	}
	return cs, nil
}

func lineIdentity(cmd *cobra.Command, productID string) (schema.LineIdentity, error) {
	c, _ := cmd.Flags().GetString("condition")
	condition, err := schema.ParseCondition(c)
	if err != nil {
		return schema.LineIdentity{}, err
	}
	return schema.LineIdentity{ProductID: productID, Condition: condition}, nil
}
