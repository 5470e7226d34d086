// Package notify delivers newly found postings over email, ntfy and Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"school-job-scout/internal/config"
	"school-job-scout/internal/scraper"

	"go.uber.org/zap"
)

const (
	ChannelEmail    = "email"
	ChannelNtfy     = "ntfy"
	ChannelTelegram = "telegram"
)

// Notifier sends the new postings of one run. total is how many relevant
// postings the run saw overall.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, newJobs []scraper.Job, total int) error
}

// Result is the outcome of one channel.
type Result struct {
	Channel string
	Err     error
}

// Multi fans a notification out to every configured channel. One channel
// failing does not stop the others.
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{notifiers: notifiers, logger: logger.Named("notify")}
}

func (m *Multi) Name() string { return "all" }

func (m *Multi) Len() int { return len(m.notifiers) }

// Send notifies every channel and reports each outcome in order.
func (m *Multi) Send(ctx context.Context, jobs []scraper.Job, total int) []Result {
	results := make([]Result, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		err := n.Notify(ctx, jobs, total)
		if err != nil {
			m.logger.Warn("⚠️ notification failed", zap.String("channel", n.Name()), zap.Error(err))
		} else {
			m.logger.Info("📨 notification sent", zap.String("channel", n.Name()), zap.Int("jobs", len(jobs)))
		}
		results = append(results, Result{Channel: n.Name(), Err: err})
	}
	return results
}

func (m *Multi) Notify(ctx context.Context, jobs []scraper.Job, total int) error {
	if len(jobs) == 0 {
		return nil
	}
	var errs []error
	for _, r := range m.Send(ctx, jobs, total) {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Channel, r.Err))
		}
	}
	return errors.Join(errs...)
}

type errorReporter interface {
	SendError(err error) error
}

// ReportError forwards a failed run to the channels that can show one.
func (m *Multi) ReportError(err error) {
	for _, n := range m.notifiers {
		r, ok := n.(errorReporter)
		if !ok {
			continue
		}
		if sendErr := r.SendError(err); sendErr != nil {
			m.logger.Warn("⚠️ error report failed", zap.String("channel", n.Name()), zap.Error(sendErr))
		}
	}
}

// FromConfig builds a Multi over every channel that has credentials, minus
// the channels named in skip.
func FromConfig(cfg *config.Config, logger *zap.Logger, skip ...string) (*Multi, error) {
	skipped := func(name string) bool { return slices.Contains(skip, name) }
	var ns []Notifier
	if cfg.Email.Enabled() && !skipped(ChannelEmail) {
		ns = append(ns, NewEmail(cfg.Email))
	}
	if cfg.NtfyTopic != "" && !skipped(ChannelNtfy) {
		ns = append(ns, NewNtfy(cfg.NtfyTopic, 0))
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 && !skipped(ChannelTelegram) {
		bot, err := NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			return nil, err
		}
		ns = append(ns, bot)
	}
	return NewMulti(logger, ns...), nil
}

// TestJob is the fake posting sent by test-notify.
func TestJob() scraper.Job {
	return scraper.Job{
		Title:    "Test: Social Studies Teacher Position",
		District: "Test District",
		URL:      "https://example.com/test-job",
		Source:   scraper.SourceOther,
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
