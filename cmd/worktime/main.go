/*
main.go - Application entry point

PURPOSE:
  Command line front end of the work-time reconciliation engine.

COMMANDS:
  serve    Run the HTTP API (see serve.go)
  report   Print one report from the database (see report.go)

GLOBAL FLAGS:
  --config   YAML configuration file (default: built-in defaults)
  --db       SQLite database path, overrides database.path
             Use ":memory:" for an in-memory database

EXAMPLES:
  # Run the API with a config file
  worktime serve --config worktime.yaml

  # Print January for one user
  worktime report --user alice --workspace acme --start 2024-01-01 --end 2024-01-31

SEE ALSO:
  - config/config.go: Configuration layout
*/
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/worktime/config"
	"github.com/warp/worktime/store/sqlite"
)

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:   "worktime",
	Short: "worktime reconciles recorded work time against expected work time",
	Long: `worktime expands recurring schedules and events into a daily target,
slices recorded time entries onto local dates and rolls both up into
weeks, months, quarters and years.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides the config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and opens the store.
func setup() (*config.Config, *slog.Logger, *sqlite.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return cfg, logger, store, nil
}
