package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"school-job-scout/internal/dedup"
	"school-job-scout/internal/scraper"
)

// ScrapeOutput is the file written by an ad-hoc scrape.
type ScrapeOutput struct {
	ScrapedAt time.Time     `json:"scraped_at"`
	TotalJobs int           `json:"total_jobs"`
	Jobs      []scraper.Job `json:"jobs"`
}

// RunResults is the latest-results file written by every scheduled run.
type RunResults struct {
	ScrapeOutput
	NewJobs    int      `json:"new_jobs"`
	NewJobKeys []string `json:"new_job_keys"`
}

func NewScrapeOutput(jobs []scraper.Job, at time.Time) ScrapeOutput {
	if jobs == nil {
		jobs = []scraper.Job{}
	}
	return ScrapeOutput{ScrapedAt: at, TotalJobs: len(jobs), Jobs: jobs}
}

func NewRunResults(jobs, newJobs []scraper.Job, at time.Time) RunResults {
	keys := make([]string, 0, len(newJobs))
	for _, j := range newJobs {
		keys = append(keys, dedup.Key(j))
	}
	return RunResults{ScrapeOutput: NewScrapeOutput(jobs, at), NewJobs: len(newJobs), NewJobKeys: keys}
}

// NewSubset returns the jobs flagged as new, in file order.
func (r RunResults) NewSubset() []scraper.Job {
	keys := dedup.NewKeySet(r.NewJobKeys...)
	out := []scraper.Job{}
	for _, j := range r.Jobs {
		if keys.Has(dedup.Key(j)) {
			out = append(out, j)
		}
	}
	return out
}

// DefaultOutputPath names an ad-hoc scrape file after its start time.
func DefaultOutputPath(now time.Time) string {
	return fmt.Sprintf("jobs_%s.json", now.Format("20060102_150405"))
}

// WriteJSON replaces path with the indented encoding of v.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

func ReadRunResults(path string) (RunResults, error) {
	var r RunResults
	data, err := os.ReadFile(path)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}
