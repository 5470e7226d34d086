package main

import (
	"context"
	"fmt"

	"school-job-scout/internal/browser"
	"school-job-scout/internal/config"
	"school-job-scout/internal/database"
	"school-job-scout/internal/dedup"
	"school-job-scout/internal/fetch"
	"school-job-scout/internal/filter"
	"school-job-scout/internal/logging"
	"school-job-scout/internal/notify"
	"school-job-scout/internal/pipeline"
	"school-job-scout/internal/scraper"

	"go.uber.org/zap"
)

// commandContext lazily loads what the subcommands share.
type commandContext struct {
	configPath    string
	districtsPath string
	logLevel      string
	quiet         bool

	cfg    *config.Config
	logger *zap.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.districtsPath != "" {
		cfg.DistrictsPath = c.districtsPath
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.quiet {
		cfg.LogLevel = "warn"
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, err
	}
	c.logger = logger
	if cfg.Loaded != "" {
		logger.Debug("🔧 settings loaded", zap.String("path", cfg.Loaded))
	}
	return logger, nil
}

func (c *commandContext) districts() ([]config.District, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return config.LoadDistricts(cfg.DistrictsPath)
}

// openFetchers starts the HTTP collector and, when configured, a browser.
// A browser that fails to start degrades to static fetching.
func openFetchers(ctx context.Context, cfg *config.Config, logger *zap.Logger) (scraper.Fetchers, func()) {
	f := scraper.Fetchers{
		HTTP: fetch.NewCollector(fetch.Options{UserAgent: cfg.HTTP.UserAgent, Timeout: cfg.HTTP.Timeout}, logger),
	}
	r, err := browser.Open(ctx, cfg.Renderer, browser.Options{
		Headless:      cfg.IsHeadless(),
		UserAgent:     cfg.HTTP.UserAgent,
		Timeout:       cfg.HTTP.Timeout,
		CookiesPath:   cfg.CookiesPath,
		ScreenshotDir: cfg.ScreenshotDir,
	}, logger)
	if err != nil {
		logger.Warn("⚠️ browser unavailable, JavaScript portals fall back to static pages", zap.Error(err))
		return f, func() {}
	}
	if r == nil {
		return f, func() {}
	}
	f.Browser = r
	logger.Info("✅ browser initialized", zap.String("renderer", cfg.Renderer))
	return f, func() {
		if err := r.Close(); err != nil {
			logger.Warn("⚠️ failed to close browser", zap.Error(err))
		}
	}
}

func newOrchestrator(cfg *config.Config, f scraper.Fetchers, logger *zap.Logger) *pipeline.Orchestrator {
	opts := cfg.ScraperOptions()
	return pipeline.NewOrchestrator(pipeline.DefaultAdapters(opts, logger), f, opts, cfg.Concurrency, logger)
}

func openTracker(cfg *config.Config, logger *zap.Logger) (*dedup.Tracker, func(), error) {
	switch cfg.StateBackend {
	case config.StateRedis:
		store, err := dedup.NewRedisStore(cfg.RedisURL, dedup.DefaultRedisKey)
		if err != nil {
			return nil, nil, err
		}
		return dedup.NewTracker(store, logger), func() { _ = store.Close() }, nil
	default:
		return dedup.NewTracker(dedup.NewFileStore(cfg.StatePath), logger), func() {}, nil
	}
}

func openStore(ctx context.Context, cfg *config.Config, kind string) (database.JobStore, error) {
	if err := cfg.ValidateStore(kind); err != nil {
		return nil, err
	}
	switch kind {
	case config.StorePostgres:
		return database.Open(ctx, database.KindPostgres, cfg.DatabaseURL)
	case config.StoreSQLite:
		return database.Open(ctx, database.KindSQLite, cfg.SQLitePath)
	}
	return nil, fmt.Errorf("no store selected")
}

// runOnce performs one automated run, local or against a store.
func runOnce(ctx context.Context, cfg *config.Config, store string, logger *zap.Logger) (pipeline.Outcome, error) {
	districts, err := config.LoadDistricts(cfg.DistrictsPath)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	fetchers, closeFetchers := openFetchers(ctx, cfg, logger)
	defer closeFetchers()

	r := &pipeline.Runner{
		Discoverer:  newOrchestrator(cfg, fetchers, logger),
		Classifier:  filter.NewClassifier(cfg.ClassifierKeywords()),
		ResultsPath: cfg.ResultsPath,
		RunSource:   "cli",
		Logger:      logger,
	}

	if store == config.StoreNone {
		notifier, err := notify.FromConfig(cfg, logger)
		if err != nil {
			return pipeline.Outcome{}, err
		}
		tracker, closeTracker, err := openTracker(cfg, logger)
		if err != nil {
			return pipeline.Outcome{}, err
		}
		defer closeTracker()
		r.Notifier, r.Tracker = notifier, tracker

		out, err := r.RunLocal(ctx, districts)
		if err != nil {
			notifier.ReportError(err)
		}
		return out, err
	}

	st, err := openStore(ctx, cfg, store)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	defer st.Close()
	notifier, err := notify.FromConfig(cfg, logger, notify.ChannelEmail)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	r.Store, r.Notifier = st, notifier
	if cfg.Email.Enabled() {
		r.Status = notify.NewEmail(cfg.Email)
	}
	out, err := r.RunCloud(ctx, districts)
	if err != nil {
		notifier.ReportError(err)
	}
	return out, err
}
