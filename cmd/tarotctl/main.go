// Package main is the tarotctl administration CLI. It works directly against
// the service database and never calls a generation provider.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/tarot-service/internal/adapters/storage/sqlite"
	"github.com/jsamuelsen/tarot-service/internal/platform/config"
	"github.com/jsamuelsen/tarot-service/internal/platform/logging"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	profile  string
	database string
	verbose  bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tarotctl",
		Short:         "Administer the tarot service database",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `tarotctl manages the tarot service database without starting the HTTP server.

Available subcommands:
  migrate          - Apply pending schema migrations and seed data
  draw             - Draw cards for a spread from the stored deck
  import-meanings  - Upsert a deck's card meanings from a JSON file`,
	}

	root.PersistentFlags().StringVarP(&opts.profile, "profile", "p", envOr("APP_ENVIRONMENT", "local"),
		"Configuration profile to load")
	root.PersistentFlags().StringVar(&opts.database, "db", "", "Database path (default: database.path from config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newDrawCmd(opts))
	root.AddCommand(newImportMeaningsCmd(opts))

	return root
}

// openStore resolves the database path and opens it. Provider settings are
// not validated since no subcommand generates text.
func (o *rootOptions) openStore(ctx context.Context, skipMigrations bool) (*sqlite.Store, *slog.Logger, error) {
	level := "warn"
	if o.verbose {
		level = "debug"
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   level,
		Format:  "pretty",
		Service: "tarotctl",
	}, os.Stderr)

	path := o.database
	busy := config.DefaultDatabaseBusyTimeout

	if path == "" {
		cfg, err := config.Load(o.profile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}

		path = cfg.Database.Path
		busy = cfg.Database.BusyTimeout
	}

	store, err := sqlite.Open(ctx, sqlite.Config{
		Path:           path,
		MaxOpenConns:   config.DefaultDatabaseMaxOpenConns,
		BusyTimeout:    busy,
		SkipMigrations: skipMigrations,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	return store, logger, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
