package browser

import (
	"context"
	"fmt"
	"time"

	"school-job-scout/internal/scraper"
	"school-job-scout/utils"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

// Chrome renders pages through a local Chrome via the DevTools protocol.
// Each call gets its own tab.
type Chrome struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	shots    *utils.ScreenShotDebugger
	logger   *zap.Logger
}

func NewChrome(ctx context.Context, opts Options, logger *zap.Logger) *Chrome {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	flags := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		flags = append(flags, chromedp.UserAgent(opts.UserAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), flags...)
	if opts.CookiesPath != "" {
		logger.Warn("⚠️ cookies are only applied by the playwright renderer")
	}
	return &Chrome{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  opts.Timeout,
		shots:    utils.NewScreenShotDebugger(opts.ScreenshotDir, logger),
		logger:   logger.Named("chromedp"),
	}
}

// tab opens a new tab that is torn down when ctx ends or budget runs out.
func (c *Chrome) tab(ctx context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	tabCtx, cancelTab := chromedp.NewContext(c.allocCtx)
	runCtx, cancelRun := context.WithTimeout(tabCtx, budget)
	stop := context.AfterFunc(ctx, cancelRun)
	return runCtx, func() {
		stop()
		cancelRun()
		cancelTab()
	}
}

func (c *Chrome) Render(ctx context.Context, url string, settle time.Duration) (scraper.Page, error) {
	runCtx, cancel := c.tab(ctx, c.timeout+settle)
	defer cancel()

	var html, text string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return scraper.Page{}, fmt.Errorf("render %s: %w", url, err)
	}
	return scraper.Page{URL: url, HTML: html, Text: text}, nil
}

func (c *Chrome) Search(ctx context.Context, url string, form scraper.SearchForm, term string) (scraper.Page, error) {
	runCtx, cancel := c.tab(ctx, c.timeout+form.LoadSettle+form.Settle)
	defer cancel()

	var inputs []*cdp.Node
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(form.LoadSettle),
		chromedp.Nodes(form.Input, &inputs, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return scraper.Page{}, fmt.Errorf("load %s: %w", url, err)
	}
	if len(inputs) == 0 {
		var png []byte
		if err := chromedp.Run(runCtx, chromedp.FullScreenshot(&png, 90)); err == nil {
			c.shots.Save(png, "search-form-missing", fmt.Sprintf("no %s on %s", form.Input, url))
		}
		return scraper.Page{}, fmt.Errorf("%w: %s", ErrNoSearchForm, form.Input)
	}

	submit := chromedp.SendKeys(form.Input, kb.Enter, chromedp.ByQuery)
	if form.Submit != "" {
		submit = chromedp.Click(form.Submit, chromedp.ByQuery)
	}
	var html, text string
	err = chromedp.Run(runCtx,
		chromedp.SendKeys(form.Input, term, chromedp.ByQuery),
		chromedp.Sleep(utils.Jitter(200, 600)),
		submit,
		chromedp.Sleep(form.Settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Text("body", &text, chromedp.ByQuery),
	)
	if err != nil {
		return scraper.Page{}, fmt.Errorf("search %q on %s: %w", term, url, err)
	}
	return scraper.Page{URL: url, HTML: html, Text: text, SearchTerm: term}, nil
}

// Close shuts the browser down.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}
