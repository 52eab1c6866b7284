package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// cartView is the JSON/YAML shape of a cart: the snapshot plus its derived totals.
type cartView struct {
	schema.CartSnapshot `yaml:",inline"`
	Count               int          `json:"count" yaml:"count"`
	Total               schema.Money `json:"total" yaml:"total"`
	TotalDisplay        string       `json:"total_display" yaml:"total_display"`
}

// WriteCart outputs a cart, dispatching based on the output format configured.
func WriteCart(snap schema.CartSnapshot, cfg *contract.Config) error {
	count := 0
	for _, l := range snap.Lines {
		count += l.Quantity
	}
	view := cartView{CartSnapshot: snap, Count: count, Total: snap.Total(), TotalDisplay: snap.Total().String()}

	header := []string{"product_id", "condition", "name", "quantity", "unit_price", "subtotal"}
	rows := func(w *csv.Writer) error {
		for _, l := range snap.Lines {
			rec := []string{
				l.Identity.ProductID,
				string(l.Identity.Condition),
				l.Name,
				strconv.Itoa(l.Quantity),
				l.UnitPrice.String(),
				l.Subtotal().String(),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := dispatch(cfg, view, header, rows, func(w io.Writer) error {
		return writeCartTable(snap, view, cfg, w)
	}); err != nil {
		return fmt.Errorf("error writing cart output: %w", err)
	}
	return nil
}

// writeCartTable generates and writes the human-readable cart.
func writeCartTable(snap schema.CartSnapshot, view cartView, cfg *contract.Config, w io.Writer) error {
	if len(snap.Lines) == 0 {
		_, err := fmt.Fprintf(w, "🛒 Cart of %s is empty\n", snap.UserID)
		return err
	}

	table := newTable(w, []string{"#", "Product", "Name", "Condition", "Qty", "Price", "Subtotal"})
	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for i, l := range snap.Lines {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			l.Identity.ProductID,
			contract.TruncateText(l.Name, nameWidth),
			contract.GetConditionLabel(l.Identity.Condition, cfg.UseColors),
			strconv.Itoa(l.Quantity),
			l.UnitPrice.String(),
			l.Subtotal().String(),
		})
	}
	if err := renderTable(table, data); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "🛒 %s: %d item(s), total %s\n", snap.UserID, view.Count, view.TotalDisplay)
	return err
}
