package main

import (
	"context"
	"fmt"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/filter"
	"school-job-scout/internal/report"

	"github.com/spf13/cobra"
)

type scrapeFlags struct {
	output        string
	district      string
	list          bool
	noSave        bool
	socialStudies bool
	timeout       time.Duration
}

func newScrapeCommand(ctx *commandContext) *cobra.Command {
	var f scrapeFlags
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape districts once and save every posting found",
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

			districts, err := config.LoadDistricts(cfg.DistrictsPath)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if f.district != "" {
				matching := config.MatchDistricts(districts, f.district)
				if len(matching) == 0 {
					fmt.Fprintf(w, "No district found matching '%s'\nAvailable districts:\n", f.district)
					for _, d := range districts {
						fmt.Fprintf(w, "  - %s\n", d.Name)
					}
					return fmt.Errorf("no district matches %q", f.district)
				}
				districts = matching
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			fetchers, closeFetchers := openFetchers(runCtx, cfg, logger)
			defer closeFetchers()

			started := time.Now()
			jobs, err := newOrchestrator(cfg, fetchers, logger).RunDiscovery(runCtx, districts)
			if err != nil {
				return err
			}
			if f.socialStudies {
				jobs = filter.NewClassifier(cfg.ClassifierKeywords()).Filter(jobs)
				if !ctx.quiet {
					fmt.Fprintln(w, "\nFiltered to middle/high school social studies positions")
				}
			}

			rule := "============================================================"
			fmt.Fprintf(w, "\n%s\nSCRAPING COMPLETE\n%s\n\n", rule, rule)
			fmt.Fprint(w, report.Summary(jobs))

			if f.list {
				fmt.Fprintf(w, "\n%s\nJOB LISTINGS\n%s\n", rule, rule)
				fmt.Fprint(w, report.Listing(jobs))
			}

			if f.noSave {
				return nil
			}
			path := f.output
			if path == "" {
				path = report.DefaultOutputPath(started)
			}
			if err := report.WriteJSON(path, report.NewScrapeOutput(jobs, started)); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nResults saved to: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output JSON file (default jobs_TIMESTAMP.json)")
	cmd.Flags().StringVarP(&f.district, "district", "d", "", "Scrape only districts whose name contains this")
	cmd.Flags().BoolVarP(&f.list, "list", "l", false, "List every job title in the output")
	cmd.Flags().BoolVarP(&ctx.quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "Do not write the results file")
	cmd.Flags().BoolVar(&f.socialStudies, "social-studies", false, "Keep only middle/high school social studies positions")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Minute, "Abort the scrape after this long")
	return cmd
}
