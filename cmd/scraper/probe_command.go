package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/filter"
	"school-job-scout/internal/report"
	"school-job-scout/internal/scraper"

	"github.com/spf13/cobra"
)

// probe runs one portal through its adapter and shows why each posting would
// be kept or dropped. Useful when a district starts returning nothing.
func newProbeCommand(ctx *commandContext) *cobra.Command {
	var (
		d       config.District
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Scrape a single portal and explain the classifier verdict for each posting",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.Validate(); err != nil {
				return err
			}
			if d.Type == config.Multiple {
				return errors.New("probe one portal at a time")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			fetchers, closeFetchers := openFetchers(runCtx, cfg, logger)
			defer closeFetchers()

			jobs, err := newOrchestrator(cfg, fetchers, logger).ScrapeDistrict(runCtx, d)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), verdictTable(filter.NewClassifier(cfg.ClassifierKeywords()), jobs))
			fmt.Fprintf(cmd.OutOrStdout(), "%d posting(s)\n", len(jobs))
			return nil
		},
	}
	cmd.Flags().StringVar(&d.Name, "name", "Probe", "District name stamped on results")
	cmd.Flags().StringVar((*string)(&d.Type), "type", "", "Portal type: AppliTrack, PowerSchool, PAEducator, SchoolSpring or Other")
	cmd.Flags().StringVar(&d.URL, "url", "", "Portal URL")
	cmd.Flags().StringVar(&d.FilterHint, "filter", "", "Search hint for statewide boards")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Abort after this long")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func verdictTable(c *filter.Classifier, jobs []scraper.Job) string {
	mark := func(ok bool, term string) string {
		s := "✗"
		if ok {
			s = "✓"
		}
		if term != "" {
			s += " " + term
		}
		return s
	}
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		v := c.Explain(j)
		rows = append(rows, []string{
			j.Title,
			mark(v.Subject, v.SubjectTerm),
			mark(v.Position, v.RoleTerm),
			mark(v.Grade, v.GradeTerm),
			mark(v.Relevant(), ""),
		})
	}
	return report.Table([]string{"Title", "Subject", "Position", "Grade", "Keep"}, rows)
}
