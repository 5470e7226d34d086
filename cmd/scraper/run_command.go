package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"school-job-scout/internal/pipeline"
	"school-job-scout/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		store   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape, filter, detect new postings and notify",
		Long: "Without --store, new postings are found by diffing against the previous run's state file.\n" +
			"With --store postgres|sqlite, postings are upserted and the store decides what is new.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cmd.Flags().Changed("store") {
				store = cfg.Store
			}
			if err := cfg.ValidateStore(store); err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			w := cmd.OutOrStdout()
			printBanner(w, "School Job Scout - Automated Run")
			out, err := runOnce(runCtx, cfg, store, logger)
			if err != nil {
				return err
			}
			printOutcome(w, out)
			if nerr := out.NotifyErr(); nerr != nil {
				logger.Warn("⚠️ some notifications failed", zap.Error(nerr))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&store, "store", "", "Persist to a job store: postgres or sqlite")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Abort the run after this long")
	return cmd
}

func printBanner(w io.Writer, title string) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n%s\nTime: %s\n%s\n\n", rule, title, time.Now().Format("2006-01-02 15:04:05"), rule)
}

func printOutcome(w io.Writer, out pipeline.Outcome) {
	fmt.Fprintf(w, "\nScraped %d posting(s), %d social studies position(s)\n", out.Discovered, len(out.Jobs))
	if len(out.New) == 0 {
		fmt.Fprintln(w, "No new positions since last run.")
	} else {
		fmt.Fprintf(w, "\n🎉 Found %d NEW position(s)!\n", len(out.New))
		for _, j := range out.New {
			fmt.Fprintf(w, "  - %s (%s)\n", j.Title, j.District)
		}
	}
	for _, r := range out.Notified {
		status := "✓ Success"
		if r.Err != nil {
			status = "✗ Failed: " + r.Err.Error()
		}
		fmt.Fprintf(w, "  %s: %s\n", r.Channel, status)
	}
	if len(out.Jobs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, report.Summary(out.Jobs))
	}
}
