package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/scraper"
	"school-job-scout/internal/scraper/applitrack"
	"school-job-scout/internal/scraper/other"
	"school-job-scout/internal/scraper/paeducator"
	"school-job-scout/internal/scraper/powerschool"
	"school-job-scout/internal/scraper/schoolspring"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultAdapters builds one adapter per portal family.
func DefaultAdapters(opts scraper.Options, logger *zap.Logger) []scraper.Adapter {
	return []scraper.Adapter{
		applitrack.NewAppliTrackScraper(opts, logger),
		powerschool.NewPowerSchoolScraper(opts, logger),
		paeducator.NewPAEducatorScraper(opts, logger),
		schoolspring.NewSchoolSpringScraper(opts, logger),
		other.NewOtherScraper(opts, logger),
	}
}

// Orchestrator runs the configured districts through their adapters.
type Orchestrator struct {
	adapters    map[scraper.Source]scraper.Adapter
	fetchers    scraper.Fetchers
	bounds      scraper.Bounds
	concurrency int
	logger      *zap.Logger
}

func NewOrchestrator(adapters []scraper.Adapter, f scraper.Fetchers, opts scraper.Options, concurrency int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	o := &Orchestrator{
		adapters:    make(map[scraper.Source]scraper.Adapter, len(adapters)),
		fetchers:    f,
		bounds:      opts.WithDefaults().Title,
		concurrency: concurrency,
		logger:      logger.Named("orchestrator"),
	}
	for _, a := range adapters {
		o.adapters[a.Source()] = a
	}
	return o
}

// RunDiscovery scrapes every district and concatenates their jobs in
// configuration order. A failing district contributes nothing. An empty
// district list is an error, and so is a context that ended before every
// district was scraped; the jobs found so far are returned with it.
func (o *Orchestrator) RunDiscovery(ctx context.Context, districts []config.District) ([]scraper.Job, error) {
	if len(districts) == 0 {
		return nil, config.ErrNoDistricts
	}

	results := make([][]scraper.Job, len(districts))
	if o.concurrency == 1 {
		for i, d := range districts {
			results[i] = o.scrapeLogged(ctx, i+1, len(districts), d)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.concurrency)
		for i, d := range districts {
			g.Go(func() error {
				results[i] = o.scrapeLogged(gctx, i+1, len(districts), d)
				return nil
			})
		}
		_ = g.Wait()
	}

	var all []scraper.Job
	for _, jobs := range results {
		all = append(all, jobs...)
	}
	if err := ctx.Err(); err != nil {
		return all, fmt.Errorf("discovery interrupted: %w", err)
	}
	return all, nil
}

func (o *Orchestrator) scrapeLogged(ctx context.Context, n, total int, d config.District) []scraper.Job {
	log := o.logger.With(zap.String("district", d.Name), zap.String("type", string(d.Type)))
	log.Info(fmt.Sprintf("🏫 [%d/%d] scraping %s", n, total, d.Name))

	start := time.Now()
	jobs, err := o.ScrapeDistrict(ctx, d)
	if err != nil {
		log.Warn("⚠️ district failed", zap.Error(err))
	}
	log.Info("✅ district done", zap.Int("found", len(jobs)), zap.Duration("took", time.Since(start)))
	return jobs
}

// ScrapeDistrict runs every portal of one district. Portal failures are
// reported but do not discard what other portals of the same district found.
// A panic inside an adapter becomes an error.
func (o *Orchestrator) ScrapeDistrict(ctx context.Context, d config.District) (jobs []scraper.Job, err error) {
	var failures []error
	for _, p := range d.Targets() {
		found, perr := o.scrapePortal(ctx, d, p)
		if perr != nil {
			failures = append(failures, fmt.Errorf("%s %s: %w", p.Type, p.URL, perr))
		}
		jobs = append(jobs, found...)
	}
	return jobs, errors.Join(failures...)
}

func (o *Orchestrator) scrapePortal(ctx context.Context, d config.District, p config.Portal) (jobs []scraper.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("💥 adapter panicked",
				zap.String("district", d.Name), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			jobs, err = nil, fmt.Errorf("adapter panic: %v", r)
		}
	}()

	source, ok := p.Type.Source()
	if !ok {
		return nil, fmt.Errorf("%w: unknown portal type %q", config.ErrInvalidDistrict, p.Type)
	}
	a, ok := o.adapters[source]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for %s", source)
	}

	t := scraper.Target{District: d.Name, URL: p.URL, Filter: d.Filter()}
	pages, err := a.Fetch(ctx, o.fetchers, t)
	if err != nil {
		return nil, err
	}
	return scraper.Normalize(a.Adapt(pages, t), d.Name, a.Source(), a.DedupKey(), o.bounds), nil
}
