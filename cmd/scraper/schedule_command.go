package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-job-scout/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var (
		spec    string
		store   string
		now     bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run on a cron schedule until interrupted",
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

			if spec == "" {
				spec = cfg.Schedule
			}
			if !cmd.Flags().Changed("store") {
				store = cfg.Store
			}
			if err := cfg.ValidateStore(store); err != nil {
				return err
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := scheduler.New(sigCtx, spec, func(jobCtx context.Context) error {
				runCtx, cancel := context.WithTimeout(jobCtx, timeout)
				defer cancel()
				out, err := runOnce(runCtx, cfg, store, logger)
				if err != nil {
					return err
				}
				logger.Info("📊 run summary",
					zap.Int("found", out.Discovered), zap.Int("filtered", len(out.Jobs)), zap.Int("new", len(out.New)))
				return nil
			}, logger)
			if err != nil {
				return err
			}
			s.Run(sigCtx, now)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "cron", "", "Cron spec, overrides schedule (e.g. \"0 7 * * *\" or \"@every 6h\")")
	cmd.Flags().StringVar(&store, "store", "", "Persist to a job store: postgres or sqlite")
	cmd.Flags().BoolVar(&now, "now", false, "Also run once immediately")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "Abort a single run after this long")
	return cmd
}
