package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
)

// WriteProfile outputs a profile reconciliation result.
func WriteProfile(view schema.ProfileView, cfg *contract.Config) error {
	header := []string{"outcome", "id", "email", "name", "display_name", "whatsapp", "created_at", "error"}
	rows := func(w *csv.Writer) error {
		createdAt := ""
		if !view.Profile.CreatedAt.IsZero() {
			createdAt = view.Profile.CreatedAt.Format(contract.DateTimeFormat)
		}
		return w.Write([]string{
			string(view.Outcome),
			view.Profile.ID,
			view.Profile.Email,
			view.Profile.Name,
			view.DisplayName,
			view.Profile.WhatsApp,
			createdAt,
			view.Error,
		})
	}
	if err := dispatch(cfg, view, header, rows, func(w io.Writer) error {
		return writeProfileText(view, w)
	}); err != nil {
		return fmt.Errorf("error writing profile output: %w", err)
	}
	return nil
}

func writeProfileText(view schema.ProfileView, w io.Writer) error {
	var icon string
	switch view.Outcome {
	case schema.ProfileCreated:
		icon = "✨"
	case schema.ProfileExisting:
		icon = "✅"
	default:
		icon = "⚠️ "
	}
	if _, err := fmt.Fprintf(w, "%s Profile %s: %s\n", icon, view.Outcome, view.DisplayName); err != nil {
		return err
	}
	if view.Error != "" {
		_, err := fmt.Fprintf(w, "   %s\n", view.Error)
		return err
	}
	return nil
}

// WriteCustomer outputs one customer record.
func WriteCustomer(c schema.Customer, cfg *contract.Config) error {
	header := []string{"id", "name", "email", "whatsapp", "address"}
	rows := func(w *csv.Writer) error {
		return w.Write([]string{c.ID, c.Name, c.Email, c.WhatsApp, c.Address})
	}
	if err := dispatch(cfg, c, header, rows, func(w io.Writer) error {
		table := newTable(w, []string{"Field", "Value"})
		return renderTable(table, [][]string{
			{"ID", c.ID},
			{"Name", c.Name},
			{"Email", c.Email},
			{"WhatsApp", c.WhatsApp},
			{"Address", c.Address},
		})
	}); err != nil {
		return fmt.Errorf("error writing customer output: %w", err)
	}
	return nil
}
