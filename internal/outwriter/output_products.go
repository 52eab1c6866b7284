package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// WriteProducts outputs a product listing, dispatching based on the output format configured.
func WriteProducts(products []schema.Product, cfg *contract.Config) error {
	type jsonProduct struct {
		schema.Product `yaml:",inline"`
		Availability   string `json:"availability" yaml:"availability"`
	}
	output := make([]jsonProduct, len(products))
	for i, p := range products {
		output[i] = jsonProduct{Product: p, Availability: contract.GetPlainStockLabel(p.Stock)}
	}

	header := []string{"id", "name", "category", "condition", "price", "stock", "availability"}
	rows := func(w *csv.Writer) error {
		for _, p := range products {
			rec := []string{
				p.ID,
				p.Name,
				p.Category,
				string(p.Condition),
				p.Price.String(),
				strconv.Itoa(p.Stock),
				contract.GetPlainStockLabel(p.Stock),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := dispatch(cfg, output, header, rows, func(w io.Writer) error {
		return writeProductsTable(products, cfg, w)
	}); err != nil {
		return fmt.Errorf("error writing products output: %w", err)
	}
	return nil
}

// writeProductsTable generates and writes the human-readable product listing.
func writeProductsTable(products []schema.Product, cfg *contract.Config, w io.Writer) error {
	table := newTable(w, []string{"ID", "Name", "Category", "Condition", "Price", "Stock", "Availability"})
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, p := range products {
		data = append(data, []string{
			p.ID,
			contract.TruncateText(p.Name, nameWidth),
			p.Category,
			contract.GetConditionLabel(p.Condition, cfg.UseColors),
			p.Price.String(),
			strconv.Itoa(p.Stock),
			stockLabel(p.Stock, cfg),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d product(s)\n", len(products))
	return err
}
