package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// WriteStatus outputs the record store status with one row per table.
func WriteStatus(status schema.StoreStatus, cfg *contract.Config) error {
	tables := sortedTables(status.TableSizes)

	header := []string{"backend", "connected", "table", "rows"}
	rows := func(w *csv.Writer) error {
		for _, t := range tables {
			rec := []string{status.Backend, strconv.FormatBool(status.Connected), t, strconv.FormatInt(status.TableSizes[t], 10)}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}
	if err := dispatch(cfg, status, header, rows, func(w io.Writer) error {
		connected := "disconnected"
		if status.Connected {
			connected = "connected"
		}
		if _, err := fmt.Fprintf(w, "📦 Record store: %s (%s)\n", status.Backend, connected); err != nil {
			return err
		}
		table := newTable(w, []string{"Table", "Rows"})
		var data [][]string
		for _, t := range tables {
			data = append(data, []string{t, strconv.FormatInt(status.TableSizes[t], 10)})
		}
		return renderTable(table, data)
	}); err != nil {
		return fmt.Errorf("error writing status output: %w", err)
	}
	return nil
}

// WriteMigration outputs the versions before and after a migration run.
func WriteMigration(result schema.MigrationResult, cfg *contract.Config) error {
	header := []string{"backend", "from", "to", "changed"}
	rows := func(w *csv.Writer) error {
		return w.Write([]string{
			result.Backend,
			strconv.FormatUint(uint64(result.From), 10),
			strconv.FormatUint(uint64(result.To), 10),
			strconv.FormatBool(result.Changed),
		})
	}
	if err := dispatch(cfg, result, header, rows, func(w io.Writer) error {
		if !result.Changed {
			_, err := fmt.Fprintf(w, "Database schema already at version %d. No migration needed.\n", result.To)
			return err
		}
		_, err := fmt.Fprintf(w, "Migrated %s schema from version %d to %d\n", result.Backend, result.From, result.To)
		return err
	}); err != nil {
		return fmt.Errorf("error writing migration output: %w", err)
	}
	return nil
}

// sortedTables lists table names in creation order, followed by any unknown ones.
func sortedTables(sizes map[string]int64) []string {
	var out []string
	for _, t := range schema.AllTables {
		if _, ok := sizes[t]; ok {
			out = append(out, t)
		}
	}
	var extra []string
	for t := range sizes {
		if !slices.Contains(schema.AllTables, t) {
			extra = append(extra, t)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
