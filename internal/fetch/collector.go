package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Collector fetches server-rendered pages with colly.
type Collector struct {
	base   *colly.Collector
	logger *zap.Logger
}

type Options struct {
	UserAgent string
	Timeout   time.Duration
}

func NewCollector(opts Options, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.AllowURLRevisit(),
	)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	return &Collector{base: c, logger: logger.Named("fetch")}
}

// FetchHTML returns the body of url. Non-2xx responses are errors.
func (c *Collector) FetchHTML(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	col := c.base.Clone()
	var (
		body   string
		reqErr error
	)
	col.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	col.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			reqErr = fmt.Errorf("GET %s: status %d: %w", url, r.StatusCode, err)
			return
		}
		reqErr = fmt.Errorf("GET %s: %w", url, err)
	})

	start := time.Now()
	if err := col.Visit(url); err != nil && reqErr == nil {
		reqErr = fmt.Errorf("GET %s: %w", url, err)
	}
	col.Wait()
	if reqErr != nil {
		return "", reqErr
	}
	c.logger.Debug("fetched", zap.String("url", url), zap.Int("bytes", len(body)), zap.Duration("took", time.Since(start)))
	return body, nil
}
