package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/huangsam/storesync/core"
	"github.com/huangsam/storesync/internal/contract"
	"github.com/huangsam/storesync/internal/optimistic"
	"github.com/huangsam/storesync/internal/recordstore"
	"github.com/huangsam/storesync/internal/synccache"
	"github.com/huangsam/storesync/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// logger is built from the validated log-level and log-format.
var logger = contract.DiscardLogger()

// session is the sync session shared by all store-backed commands.
var session *core.Session

// cacheStats counts cache events for --stats.
var cacheStats = &synccache.Stats{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "storesync",
	Short:              "Keep a storefront's carts, catalog and profiles in sync with the record store.",
	Long:               `Storesync caches reads, applies cart and customer changes optimistically and heals missing profile rows on sign-in.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPostRunE: closeSession,
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A .env file is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		contract.LogWarn("Could not read .env file", err)
	}

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("STORESYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("backend", schema.SQLiteBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("cache-ttl", contract.DefaultCacheTTL.String())
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("log-format", contract.DefaultLogFormat)
}

// setConfigFile points Viper at --config or the default .storesync.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".storesync") // Name of config file (without extension)
	viper.SetConfigType("yaml")       // We'll use YAML format
	viper.AddConfigPath(".")          // Look in the current directory
	viper.AddConfigPath("$HOME")      // Look in the home directory
}

// loadConfig reads the config file, unmarshals every source and validates the result.
func loadConfig() error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and parsing. This populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	logger = contract.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return nil
}

// sharedSetup validates config and opens the session against the record store.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	store, err := recordstore.Open(cfg.Backend, cfg.DBConnect, recordstore.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}

	cache := synccache.New(
		synccache.WithDefaultTTL(cfg.CacheTTL),
		synccache.WithMetrics(cacheStats),
		synccache.WithLogger(logger),
	)
	queue := optimistic.NewQueue(optimistic.WithLogger(logger))
	session = core.NewSession(store, cache, queue, logger)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// storeSetupWrapper only validates config. Store maintenance commands
// open their own connections and must not trigger an implicit migration.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return loadConfig()
}

// closeSession releases the session opened by sharedSetup and prints
// the cache and queue counters when --stats is set.
func closeSession(cmd *cobra.Command, _ []string) error {
	if session == nil {
		return nil
	}
	if cfg.ShowStats {
		s := cacheStats.Snapshot()
		cmd.PrintErrf("📊 Cache: %d hit(s), %d miss(es), %d expired, %d invalidated. Pending writes: %d\n",
			s.Hits, s.Misses, s.Expired, s.Invalidated, session.Queue().Len())
	}
	err := session.Close()
	session = nil
	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
