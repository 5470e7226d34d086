package main

import (
	"errors"
	"fmt"

	"school-job-scout/internal/notify"
	"school-job-scout/internal/scraper"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a fake posting through every configured channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			m, err := notify.FromConfig(cfg, logger)
			if err != nil {
				return err
			}
			if m.Len() == 0 {
				return errors.New("no notification channels configured (set EMAIL_*, NTFY_TOPIC or TELEGRAM_*)")
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Sending test notifications...")
			failed := 0
			for _, r := range m.Send(cmd.Context(), []scraper.Job{notify.TestJob()}, 1) {
				if r.Err != nil {
					failed++
					fmt.Fprintf(w, "  %s: ✗ Failed (%v)\n", r.Channel, r.Err)
					continue
				}
				fmt.Fprintf(w, "  %s: ✓ Success\n", r.Channel)
			}
			if failed == m.Len() {
				return errors.New("every notification channel failed")
			}
			return nil
		},
	}
}
