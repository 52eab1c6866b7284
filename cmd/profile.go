package cmd

import (
	"github.com/huangsam/storesync/internal/outwriter"
	"github.com/huangsam/storesync/schema"
	"github.com/spf13/cobra"
)

// profileCmd is the parent command for profile reconciliation.
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage user profile rows",
	Long: `Reconcile the profile row of a signed-in user.

Subcommands:
  ensure - Create the profile row when it is missing

Examples:
  # Heal the profile of a user after sign-in
  storesync profile ensure u-123 --email ana@example.com --name "Ana Souza"`,
}

// profileEnsureCmd makes sure a user has exactly one profile row.
var profileEnsureCmd = &cobra.Command{
	Use:   "ensure <user-id>",
	Short: "Create the profile row of a user when it is missing",
	Long: `Look up the profile row of a user and create it from the identity
provider metadata when none exists.

Outcomes:
- existing: the row was already there and is left untouched
- created: a new row was inserted
- error: the store could not be reached; nothing is retried

When two sign-ins race, only one row is created and the other reports
the row that won.

Examples:
  # Reconcile with the metadata of the identity provider
  storesync profile ensure u-123 --email ana@example.com --name "Ana Souza"

  # Reconcile and print the profile as JSON
  storesync profile ensure u-123 --email ana@example.com --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		meta := schema.UserMetadata{Attributes: map[string]string{}}
		meta.Email, _ = cmd.Flags().GetString("email")
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			meta.Attributes["full_name"] = name
		}
		if whatsapp, _ := cmd.Flags().GetString("whatsapp"); whatsapp != "" {
			meta.Attributes["whatsapp"] = whatsapp
		}

		res := session.SignIn(rootCtx, args[0], meta)
		return outwriter.NewOutWriter(cfg).WriteProfile(res.View())
	},
}
