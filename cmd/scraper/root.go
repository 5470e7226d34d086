package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "scout",
		Short:         "Find new social studies teaching postings across school district portals",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.configPath, "config", "", "Settings file (default configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&ctx.districtsPath, "districts", "", "District list, overrides districts_path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "", "Log level, overrides log_level")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newScrapeCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newScheduleCommand(ctx))
	rootCmd.AddCommand(newDistrictsCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))

	return rootCmd
}
