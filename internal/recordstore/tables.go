package recordstore

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/huangsam/storesync/schema"
)

type columnKind int

const (
	textColumn columnKind = iota
	intColumn
)

type column struct {
	name string
	kind columnKind
}

// tableDef mirrors one table of the embedded migrations. Every table is keyed by a text id.
type tableDef struct {
	name    string
	columns []column
}

var tableDefs = map[string]tableDef{
	schema.ProfilesTable: {
		name: schema.ProfilesTable,
		columns: []column{
			{"id", textColumn},
			{"email", textColumn},
			{"name", textColumn},
			{"whatsapp", textColumn},
			{"created_at", intColumn},
		},
	},
	schema.ProductsTable: {
		name: schema.ProductsTable,
		columns: []column{
			{"id", textColumn},
			{"name", textColumn},
			{"category", textColumn},
			{"condition", textColumn},
			{"price_cents", intColumn},
			{"stock", intColumn},
			{"image_url", textColumn},
		},
	},
	schema.CustomersTable: {
		name: schema.CustomersTable,
		columns: []column{
			{"id", textColumn},
			{"name", textColumn},
			{"email", textColumn},
			{"whatsapp", textColumn},
			{"address", textColumn},
		},
	},
	schema.CartsTable: {
		name: schema.CartsTable,
		columns: []column{
			{"id", textColumn},
			{"lines", textColumn},
			{"updated_at", intColumn},
		},
	},
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateIdentifier ensures a table or column name is a safe SQL identifier.
func validateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier: %s (must match pattern %s)", name, identPattern)
	}
	return nil
}

// lookupTable returns the definition of a known table.
func lookupTable(name string) (tableDef, error) {
	if err := validateIdentifier(name); err != nil {
		return tableDef{}, err
	}
	def, ok := tableDefs[name]
	if !ok {
		return tableDef{}, fmt.Errorf("unknown table %s", name)
	}
	return def, nil
}

func (t tableDef) column(name string) (column, bool) {
	idx := slices.IndexFunc(t.columns, func(c column) bool { return c.name == name })
	if idx < 0 {
		return column{}, false
	}
	return t.columns[idx], true
}

// checkColumns rejects any key that is not a column of t.
func (t tableDef) checkColumns(keys map[string]any) error {
	for k := range keys {
		if _, ok := t.column(k); !ok {
			return fmt.Errorf("unknown column %s.%s", t.name, k)
		}
	}
	return nil
}

// normalize converts v to the Go type stored for kind.
func (c column) normalize(v any) any {
	r := schema.Record{c.name: v}
	if c.kind == intColumn {
		return r.Int64(c.name)
	}
	return r.String(c.name)
}

// normalizeRecord returns a copy of rec restricted to t's columns with canonical value types.
// Columns absent from rec are filled with their zero value when fill is true.
func (t tableDef) normalizeRecord(rec schema.Record, fill bool) schema.Record {
	out := make(schema.Record, len(t.columns))
	for _, c := range t.columns {
		v, ok := rec[c.name]
		if !ok && !fill {
			continue
		}
		out[c.name] = c.normalize(v)
	}
	return out
}

// quoteIdent returns the properly quoted identifier for the given backend.
func quoteIdent(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// placeholder returns the n-th (1-based) parameter placeholder for the backend.
func placeholder(n int, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}
