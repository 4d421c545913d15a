// Command server runs the splitledger HTTP API and its maintenance commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage/mysql"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/internal/storage/sqlstore"
	"github.com/mmynk/splitledger/pkg/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile    string
		configFile string
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Shared-expense ledger server",
		Long:          "Runs the splitledger JSON API and its store maintenance commands.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(envFile, configFile)
			if err != nil {
				return err
			}
			if err := loaded.ApplyFlags(cmd.Flags()); err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logging.Setup(loaded.SlogLevel(), loaded.LogFormat)
			cfg = loaded
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default ./.env when present)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")
	config.RegisterFlags(rootCmd.PersistentFlags())

	current := func() *config.Config { return cfg }
	rootCmd.AddCommand(newServeCmd(current))
	rootCmd.AddCommand(newMigrateCmd(current))
	rootCmd.AddCommand(newBalancesCmd(current))

	return rootCmd
}

// openStore opens and migrates the configured store.
func openStore(cfg *config.Config) (*sqlstore.Store, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return mysql.New(cfg.DBDSN)
	default:
		return sqlite.New(cfg.DBPath)
	}
}

// migrateStore applies pending migrations and returns the schema version.
func migrateStore(ctx context.Context, cfg *config.Config) (int64, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		db, err := mysql.Open(cfg.DBDSN)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		return mysql.Migrate(ctx, db)
	default:
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		return sqlite.Migrate(ctx, db)
	}
}
