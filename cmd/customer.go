package cmd

import (
	"fmt"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/internal/outwriter"
	"github.com/spf13/cobra"
)

// customerCmd is the parent command for customer records.
var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Show and edit customer records",
	Long: `Work with customer records.

Edits are shown immediately and rolled back when the store rejects them.

Subcommands:
  show    - Print a customer record
  update  - Change the name or WhatsApp number
  address - Save the delivery address

Examples:
  storesync customer show c-1
  storesync customer update c-1 --whatsapp "+55 11 99999-0000"
  storesync customer address c-1 "Rua A, 100"`,
}

// customerShowCmd prints a customer.
var customerShowCmd = &cobra.Command{
	Use:     "show <customer-id>",
	Short:   "Print a customer record",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := session.Catalog().Customer(rootCtx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get customer %s: %w", args[0], err)
		}
		return outwriter.NewOutWriter(cfg).WriteCustomer(c)
	},
}

// customerUpdateCmd edits a customer.
var customerUpdateCmd = &cobra.Command{
	Use:   "update <customer-id>",
	Short: "Change the name or WhatsApp number of a customer",
	Long: `Change the name or WhatsApp number of a customer. Only the flags
that are given are written.

Examples:
  storesync customer update c-1 --name "Ana Souza"
  storesync customer update c-1 --whatsapp "+55 11 99999-0000"`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch core.CustomerPatch
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			patch.Name = &name
		}
		if cmd.Flags().Changed("whatsapp") {
			whatsapp, _ := cmd.Flags().GetString("whatsapp")
			patch.WhatsApp = &whatsapp
		}
		c, err := session.Catalog().UpdateCustomer(rootCtx, args[0], patch)
		if err != nil {
			return fmt.Errorf("failed to update customer %s: %w", args[0], err)
		}
		return outwriter.NewOutWriter(cfg).WriteCustomer(c)
	},
}

// customerAddressCmd saves a delivery address.
var customerAddressCmd = &cobra.Command{
	Use:     "address <customer-id> <address>",
	Short:   "Save the delivery address of a customer",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := session.Catalog().SaveAddress(rootCtx, args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to save address of %s: %w", args[0], err)
		}
		return outwriter.NewOutWriter(cfg).WriteCustomer(c)
	},
}
