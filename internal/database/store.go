package database

import (
	"context"

	"school-job-scout/internal/dedup"
	"school-job-scout/internal/scraper"
)

const (
	RunRunning = "running"
	RunSuccess = "success"
	RunFailed  = "failed"
)

// StoredJob is a job row together with its database id.
type StoredJob struct {
	ID string
	scraper.Job
}

// RunResult closes a scrape run.
type RunResult struct {
	Status    string
	TotalJobs int
	NewJobs   int
	Error     string
}

// Notification records one delivery attempt.
type Notification struct {
	RunID     string
	Channel   string
	JobsCount int
	Success   bool
	Error     string
}

// JobStore is the remote persistence sink. Jobs are keyed by (district, title),
// the same identity dedup.Key uses.
type JobStore interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, source string) (string, error)
	FinishRun(ctx context.Context, runID string, r RunResult) error
	// UpsertJobs inserts or refreshes jobs and returns the rows that have not
	// been notified yet, in input order.
	UpsertJobs(ctx context.Context, jobs []scraper.Job) ([]StoredJob, error)
	MarkMissingInactive(ctx context.Context, current dedup.KeySet) (int, error)
	MarkNotified(ctx context.Context, ids []string) error
	LogNotification(ctx context.Context, n Notification) error
	Close() error
}

type activeRow struct {
	id, district, title string
}

// missing returns ids of rows whose identity key is not in current.
func missing(rows []activeRow, current dedup.KeySet) []string {
	var ids []string
	for _, r := range rows {
		if !current.Has(dedup.Key(scraper.Job{District: r.district, Title: r.title})) {
			ids = append(ids, r.id)
		}
	}
	return ids
}
