// Package parquet exports the record store tables to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
	"github.com/parquet-go/parquet-go"
)

// Profile is one row of profiles.parquet.
type Profile struct {
	// ID is the user id the profile belongs to
	ID string `parquet:"id,snappy"`

	Email string `parquet:"email,snappy"`
	Name  string `parquet:"name,snappy"`

	// WhatsApp is the contact number, when the user gave one (nullable)
	WhatsApp *string `parquet:"whatsapp,optional,snappy"`

	// CreatedAt is when the profile row was created (nullable for legacy rows)
	CreatedAt *time.Time `parquet:"created_at,optional,snappy"`
}

// Product is one row of products.parquet.
type Product struct {
	ID         string `parquet:"id,snappy"`
	Name       string `parquet:"name,snappy"`
	Category   string `parquet:"category,snappy"`
	Condition  string `parquet:"condition,snappy"`
	PriceCents int64  `parquet:"price_cents,snappy"`
	Stock      int32  `parquet:"stock,snappy"`

	// ImageURL is the product picture (nullable)
	ImageURL *string `parquet:"image_url,optional,snappy"`
}

// Customer is one row of customers.parquet.
type Customer struct {
	ID       string  `parquet:"id,snappy"`
	Name     string  `parquet:"name,snappy"`
	Email    string  `parquet:"email,snappy"`
	WhatsApp *string `parquet:"whatsapp,optional,snappy"`
	Address  *string `parquet:"address,optional,snappy"`
}

// CartLine is one row of cart_lines.parquet. Carts are flattened to one row per line.
type CartLine struct {
	UserID         string `parquet:"user_id,snappy"`
	Position       int32  `parquet:"position,snappy"`
	ProductID      string `parquet:"product_id,snappy"`
	Condition      string `parquet:"condition,snappy"`
	Name           string `parquet:"name,snappy"`
	Quantity       int32  `parquet:"quantity,snappy"`
	UnitPriceCents int64  `parquet:"unit_price_cents,snappy"`

	// UpdatedAt is the last persisted change of the cart (nullable)
	UpdatedAt *time.Time `parquet:"updated_at,optional,snappy"`
}

// ExportedFile reports one file written by Export.
type ExportedFile struct {
	Table string `json:"table" yaml:"table"`
	Path  string `json:"path" yaml:"path"`
	Rows  int    `json:"rows" yaml:"rows"`
}

// Export writes every table of store into dir, one Parquet file per table.
// Carts are written as cart_lines.parquet.
func Export(ctx context.Context, store contract.RecordStore, dir string) ([]ExportedFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	tables := make(map[string][]schema.Record, len(schema.AllTables))
	for _, table := range schema.AllTables {
		recs, err := store.List(ctx, table, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", table, err)
		}
		tables[table] = recs
	}
	lines, err := ConvertCarts(tables[schema.CartsTable])
	if err != nil {
		return nil, err
	}

	var files []ExportedFile
	appendFile := func(f ExportedFile, err error) error {
		if err == nil {
			files = append(files, f)
		}
		return err
	}
	if err := appendFile(exportRows(dir, schema.ProfilesTable, "profiles.parquet", ConvertProfiles(tables[schema.ProfilesTable]))); err != nil {
		return nil, err
	}
	if err := appendFile(exportRows(dir, schema.ProductsTable, "products.parquet", ConvertProducts(tables[schema.ProductsTable]))); err != nil {
		return nil, err
	}
	if err := appendFile(exportRows(dir, schema.CustomersTable, "customers.parquet", ConvertCustomers(tables[schema.CustomersTable]))); err != nil {
		return nil, err
	}
	if err := appendFile(exportRows(dir, schema.CartsTable, "cart_lines.parquet", lines)); err != nil {
		return nil, err
	}
	return files, nil
}

func exportRows[T any](dir, table, name string, rows []T) (ExportedFile, error) {
	path := filepath.Join(dir, name)
	if err := WriteParquet(rows, path); err != nil {
		return ExportedFile{}, fmt.Errorf("failed to export %s: %w", table, err)
	}
	return ExportedFile{Table: table, Path: path, Rows: len(rows)}, nil
}

// WriteParquet writes a slice of rows to a Parquet file. The schema is derived from T's struct tags.
func WriteParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertProfiles converts profile rows for Parquet export.
func ConvertProfiles(records []schema.Record) []Profile {
	result := make([]Profile, len(records))
	for i, rec := range records {
		p := schema.ProfileFromRecord(rec)
		result[i] = Profile{
			ID:        p.ID,
			Email:     p.Email,
			Name:      p.Name,
			WhatsApp:  optionalString(p.WhatsApp),
			CreatedAt: optionalTime(p.CreatedAt),
		}
	}
	return result
}

// ConvertProducts converts product rows for Parquet export.
func ConvertProducts(records []schema.Record) []Product {
	result := make([]Product, len(records))
	for i, rec := range records {
		p := schema.ProductFromRecord(rec)
		result[i] = Product{
			ID:         p.ID,
			Name:       p.Name,
			Category:   p.Category,
			Condition:  string(p.Condition),
			PriceCents: int64(p.Price),
			Stock:      int32(p.Stock),
			ImageURL:   optionalString(p.ImageURL),
		}
	}
	return result
}

// ConvertCustomers converts customer rows for Parquet export.
func ConvertCustomers(records []schema.Record) []Customer {
	result := make([]Customer, len(records))
	for i, rec := range records {
		c := schema.CustomerFromRecord(rec)
		result[i] = Customer{
			ID:       c.ID,
			Name:     c.Name,
			Email:    c.Email,
			WhatsApp: optionalString(c.WhatsApp),
			Address:  optionalString(c.Address),
		}
	}
	return result
}

// ConvertCarts flattens cart rows into one row per line.
func ConvertCarts(records []schema.Record) ([]CartLine, error) {
	var result []CartLine
	for _, rec := range records {
		snap, err := schema.CartFromRecord(rec)
		if err != nil {
			return nil, err
		}
		for i, l := range snap.Lines {
			result = append(result, CartLine{
				UserID:         snap.UserID,
				Position:       int32(i),
				ProductID:      l.Identity.ProductID,
				Condition:      string(l.Identity.Condition),
				Name:           l.Name,
				Quantity:       int32(l.Quantity),
				UnitPriceCents: int64(l.UnitPrice),
				UpdatedAt:      optionalTime(snap.UpdatedAt),
			})
		}
	}
	return result, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
