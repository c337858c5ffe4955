package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/worktime/api"
	"github.com/warp/worktime/ledger"
	"github.com/warp/worktime/render"
)

var reportFlags struct {
	user      string
	workspace string
	start     string
	end       string
	format    string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the report of one user in one workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFlags.format != "text" && reportFlags.format != "json" {
			return fmt.Errorf("unknown format %q (use text or json)", reportFlags.format)
		}

		cfg, logger, store, err := setup()
		if err != nil {
			return err
		}
		defer store.Close()

		today := ledger.Today()
		start := cfg.Reconcile.DefaultStartDate(today)
		if reportFlags.start != "" {
			if start, err = ledger.ParseDate(reportFlags.start); err != nil {
				return fmt.Errorf("--start: %w", err)
			}
		}
		end := today
		if reportFlags.end != "" {
			if end, err = ledger.ParseDate(reportFlags.end); err != nil {
				return fmt.Errorf("--end: %w", err)
			}
		}

		resolver := ledger.NewResolver(store)
		resolver.Logger = logger
		if cfg.Reconcile.TimezoneTolerance > 0 {
			resolver.TimezoneTolerance = cfg.Reconcile.TimezoneTolerance
		}

		report, err := resolver.CreateReport(cmd.Context(),
			ledger.UserID(reportFlags.user), ledger.WorkspaceID(reportFlags.workspace), start, end)
		if err != nil {
			return err
		}

		if reportFlags.format == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(api.NewReportDTO(report))
		}
		return render.Text(os.Stdout, report)
	},
}

func init() {
	f := reportCmd.Flags()
	f.StringVar(&reportFlags.user, "user", "", "user id")
	f.StringVar(&reportFlags.workspace, "workspace", "", "workspace id")
	f.StringVar(&reportFlags.start, "start", "", "first day, YYYY-MM-DD (default: reconcile.default_start or the month start)")
	f.StringVar(&reportFlags.end, "end", "", "last day, YYYY-MM-DD (default: today)")
	f.StringVar(&reportFlags.format, "format", "text", "output format: text or json")
	reportCmd.MarkFlagRequired("user")
	reportCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(reportCmd)
}
