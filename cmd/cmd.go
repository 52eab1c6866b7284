// Package cmd defines the command-line interface for storesync.
package cmd

import (
	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the profile subcommands to the parent profile command
	profileCmd.AddCommand(profileEnsureCmd)

	// Add the cart subcommands to the parent cart command
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartCheckoutCmd)

	// Add the products subcommands to the parent products command
	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsAddCmd)

	// Add the customer subcommands to the parent customer command
	customerCmd.AddCommand(customerShowCmd)
	customerCmd.AddCommand(customerUpdateCmd)
	customerCmd.AddCommand(customerAddressCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Record store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql, or the sqlite file path")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "How long cached reads stay fresh (e.g., 30s, 5m)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json or yaml or csv")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("stats", false, "Print cache and sync queue statistics after the command")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("log-format", contract.DefaultLogFormat, "Log format: text or json")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Flags of leaf commands are read straight from cobra, since several
	// commands share names like --name that must not leak between them.
	profileEnsureCmd.Flags().String("email", "", "Email address reported by the identity provider")
	profileEnsureCmd.Flags().String("name", "", "Full name reported by the identity provider")
	profileEnsureCmd.Flags().String("whatsapp", "", "WhatsApp contact number")

	cartAddCmd.Flags().Int("qty", 1, "Units to add")
	cartAddCmd.Flags().String("condition", "", "Product condition: new or used (default: the product's own)")
	cartSetCmd.Flags().String("condition", string(schema.NewCondition), "Condition of the line: new or used")
	cartRemoveCmd.Flags().String("condition", string(schema.NewCondition), "Condition of the line: new or used")

	productsListCmd.Flags().String("category", "", "Only list products of this category")
	productsAddCmd.Flags().String("id", "", "Product id")
	productsAddCmd.Flags().String("name", "", "Product name")
	productsAddCmd.Flags().String("category", "", "Product category")
	productsAddCmd.Flags().String("condition", string(schema.NewCondition), "Product condition: new or used")
	productsAddCmd.Flags().String("price", "", "Unit price (e.g., 1299.00)")
	productsAddCmd.Flags().Int("stock", 0, "Units in stock")
	productsAddCmd.Flags().String("image-url", "", "Product picture URL")
	for _, name := range []string{"id", "name", "price"} {
		if err := productsAddCmd.MarkFlagRequired(name); err != nil {
			contract.LogFatal("Error marking products add flags", err)
		}
	}

	customerUpdateCmd.Flags().String("name", "", "New customer name")
	customerUpdateCmd.Flags().String("whatsapp", "", "New WhatsApp contact number")

	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	storeExportCmd.Flags().String("dir", "storesync-export", "Directory to write the Parquet files to")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
