package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"school-job-scout/internal/scraper"

	"go.uber.org/zap"
)

// ErrNoSearchForm is returned when a portal page has no element matching the search input.
var ErrNoSearchForm = errors.New("search form not found")

// Renderer is a scraper.Renderer that owns a browser process.
type Renderer interface {
	scraper.Renderer
	Close() error
}

const (
	KindPlaywright = "playwright"
	KindChromedp   = "chromedp"
	KindNone       = "none"
)

type Options struct {
	Headless      bool
	UserAgent     string
	Timeout       time.Duration
	CookiesPath   string
	ScreenshotDir string
}

// Open starts the named renderer. KindNone yields a nil Renderer.
func Open(ctx context.Context, kind string, opts Options, logger *zap.Logger) (Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	switch kind {
	case KindNone, "":
		return nil, nil
	case KindPlaywright:
		pm, err := NewPlaywright(opts, logger)
		if err != nil {
			return nil, err
		}
		return pm, nil
	case KindChromedp:
		return NewChrome(ctx, opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q", kind)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
