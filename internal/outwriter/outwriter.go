// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the CLI.
type OutWriter struct {
	cfg *contract.Config
}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter(cfg *contract.Config) *OutWriter {
	return &OutWriter{cfg: cfg}
}

// WriteCart prints a cart using the configured output format.
func (ow *OutWriter) WriteCart(snap schema.CartSnapshot) error {
	return WriteCart(snap, ow.cfg)
}

// WriteProducts prints a product listing using the configured output format.
func (ow *OutWriter) WriteProducts(products []schema.Product) error {
	return WriteProducts(products, ow.cfg)
}

// WriteProfile prints a profile reconciliation result using the configured output format.
func (ow *OutWriter) WriteProfile(view schema.ProfileView) error {
	return WriteProfile(view, ow.cfg)
}

// WriteCustomer prints a customer record using the configured output format.
func (ow *OutWriter) WriteCustomer(c schema.Customer) error {
	return WriteCustomer(c, ow.cfg)
}

// WriteStatus prints the record store status using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.StoreStatus) error {
	return WriteStatus(status, ow.cfg)
}

// WriteMigration prints the outcome of a migration run using the configured output format.
func (ow *OutWriter) WriteMigration(result schema.MigrationResult) error {
	return WriteMigration(result, ow.cfg)
}

// getMaxTableNameWidth calculates the maximum width for names in table output
// based on terminal width and the fixed columns of the cart and product tables.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// ID + Condition + Qty/Stock + Price + Subtotal with borders/padding
	available := termWidth - 70
	if available < 12 {
		return 12
	}
	if available > 50 {
		return 50
	}
	return available
}
