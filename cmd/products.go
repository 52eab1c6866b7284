package cmd

import (
	"fmt"

	"github.com/huangsam/storesync/internal/outwriter"
	"github.com/huangsam/storesync/schema"
	"github.com/spf13/cobra"
)

// productsCmd is the parent command for catalog operations.
var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List and add catalog products",
	Long: `Work with the product catalog.

Listings are cached for --cache-ttl. Adding a product evicts every
cached listing so the next read sees it.

Subcommands:
  list - List products, optionally within one category
  add  - Add a product to the catalog

Examples:
  storesync products list --category phones
  storesync products add --id phoneA --name "Phone A" --category phones --price 1299.00 --stock 5`,
}

// productsListCmd lists products.
var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products",
	Long: `List catalog products ordered by id, with a stock label.

Examples:
  # Everything
  storesync products list

  # Only phones, as YAML
  storesync products list --category phones --output yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		category, _ := cmd.Flags().GetString("category")
		products, err := session.Catalog().Products(rootCtx, category)
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}
		return outwriter.NewOutWriter(cfg).WriteProducts(products)
	},
}

// productsAddCmd adds a product.
var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product to the catalog",
	Long: `Insert a product into the record store. Adding an id that already
exists fails with a conflict.

Examples:
  storesync products add --id phoneA --name "Phone A" --category phones --price 1299.00 --stock 5
  storesync products add --id phoneA-used --name "Phone A" --category phones --condition used --price 899.90`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		priceStr, _ := flags.GetString("price")
		price, err := schema.ParseMoney(priceStr)
		if err != nil {
			return fmt.Errorf("invalid --price: %w", err)
		}
		conditionStr, _ := flags.GetString("condition")
		condition, err := schema.ParseCondition(conditionStr)
		if err != nil {
			return err
		}

		p := schema.Product{Condition: condition, Price: price}
		p.ID, _ = flags.GetString("id")
		p.Name, _ = flags.GetString("name")
		p.Category, _ = flags.GetString("category")
		p.Stock, _ = flags.GetInt("stock")
		p.ImageURL, _ = flags.GetString("image-url")

		if err := session.Catalog().AddProduct(rootCtx, p); err != nil {
			return err
		}
		return outwriter.NewOutWriter(cfg).WriteProducts([]schema.Product{p})
	},
}
