package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/database"
	"school-job-scout/internal/dedup"
	"school-job-scout/internal/filter"
	"school-job-scout/internal/notify"
	"school-job-scout/internal/report"
	"school-job-scout/internal/scraper"

	"go.uber.org/zap"
)

// Discoverer scrapes districts into jobs.
type Discoverer interface {
	RunDiscovery(ctx context.Context, districts []config.District) ([]scraper.Job, error)
}

// Notifier fans new jobs out and reports per-channel outcomes.
type Notifier interface {
	Send(ctx context.Context, jobs []scraper.Job, total int) []notify.Result
}

// StatusSender reports a finished run whether or not anything is new.
type StatusSender interface {
	SendStatus(ctx context.Context, total int, newJobs []scraper.Job) error
}

// Runner wires discovery, classification, change detection and the sinks.
// Notifier, Status and Store are optional.
type Runner struct {
	Discoverer  Discoverer
	Classifier  *filter.Classifier
	Tracker     *dedup.Tracker
	Notifier    Notifier
	Status      StatusSender
	Store       database.JobStore
	ResultsPath string
	// RunSource labels cloud runs in scrape_runs.
	RunSource string

	Logger *zap.Logger
	now    func() time.Time
}

// Outcome is what one run produced.
type Outcome struct {
	RunID      string
	Discovered int
	Jobs       []scraper.Job
	New        []scraper.Job
	Notified   []notify.Result
}

// NotifyErr joins the failed channels, nil when all succeeded.
func (o Outcome) NotifyErr() error {
	var errs []error
	for _, r := range o.Notified {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Channel, r.Err))
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// discover runs every district and keeps the relevant jobs.
func (r *Runner) discover(ctx context.Context, districts []config.District) (int, []scraper.Job, error) {
	jobs, err := r.Discoverer.RunDiscovery(ctx, districts)
	if err != nil {
		return 0, nil, err
	}
	relevant := jobs
	if r.Classifier != nil {
		relevant = r.Classifier.Filter(jobs)
	}
	r.logger().Info("🔍 discovery finished", zap.Int("found", len(jobs)), zap.Int("filtered", len(relevant)))
	return len(jobs), relevant, nil
}

// RunLocal diffs against the previous run's state, saves the new state once,
// notifies about new postings and writes the latest-results file.
// Notification failures are reported in the Outcome, not as an error.
func (r *Runner) RunLocal(ctx context.Context, districts []config.District) (Outcome, error) {
	log := r.logger()
	var out Outcome

	unlock, err := r.Tracker.Lock()
	if err != nil {
		return out, err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("⚠️ failed to release state lock", zap.Error(err))
		}
	}()

	previous := r.Tracker.LoadPreviousKeys(ctx)

	out.Discovered, out.Jobs, err = r.discover(ctx, districts)
	if err != nil {
		return out, err
	}

	newJobs, keys := dedup.Diff(out.Jobs, previous)
	out.New = newJobs
	log.Info("🆕 change detection", zap.Int("new", len(newJobs)), zap.Int("previous", len(previous)))

	if err := r.Tracker.PersistCurrentKeys(ctx, keys, len(out.Jobs)); err != nil {
		return out, fmt.Errorf("persist run state: %w", err)
	}

	if len(newJobs) > 0 && r.Notifier != nil {
		out.Notified = r.Notifier.Send(ctx, newJobs, len(out.Jobs))
	} else if len(newJobs) == 0 {
		log.Info("ℹ️ no new positions since last run, no notifications sent")
	}

	if r.ResultsPath != "" {
		if err := report.WriteJSON(r.ResultsPath, report.NewRunResults(out.Jobs, newJobs, r.clock())); err != nil {
			return out, fmt.Errorf("write results: %w", err)
		}
		log.Info("📁 results saved", zap.String("path", r.ResultsPath))
	}
	return out, nil
}
