package browser

import (
	"context"
	"fmt"
	"time"

	"school-job-scout/internal/scraper"
	"school-job-scout/utils"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	timeout time.Duration
	shots   *utils.ScreenShotDebugger
	logger  *zap.Logger
}

// NewPlaywright launches Chromium with one shared browser context.
func NewPlaywright(opts Options, logger *zap.Logger) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	pm := &PlaywrightManager{
		pw:      pw,
		browser: browser,
		context: bctx,
		timeout: opts.Timeout,
		shots:   utils.NewScreenShotDebugger(opts.ScreenshotDir, logger),
		logger:  logger.Named("playwright"),
	}

	if opts.CookiesPath != "" {
		cookies, err := LoadCookies(opts.CookiesPath)
		if err != nil {
			pm.logger.Warn("⚠️ cookies not loaded", zap.Error(err))
		} else if err := bctx.AddCookies(toPlaywright(cookies)); err != nil {
			pm.logger.Warn("⚠️ cookies rejected", zap.Error(err))
		} else {
			pm.logger.Info("🍪 cookies loaded", zap.Int("count", len(cookies)))
		}
	}
	return pm, nil
}

func (pm *PlaywrightManager) open(ctx context.Context, url string) (playwright.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := pm.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(pm.timeout.Milliseconds())),
	}); err != nil {
		page.Close()
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	return page, nil
}

// Render loads url, waits for it to settle and scrolls once so lazy lists load.
func (pm *PlaywrightManager) Render(ctx context.Context, url string, settle time.Duration) (scraper.Page, error) {
	page, err := pm.open(ctx, url)
	if err != nil {
		return scraper.Page{}, err
	}
	defer page.Close()

	if err := sleep(ctx, settle); err != nil {
		return scraper.Page{}, err
	}
	utils.SmoothScroll(page)
	return snapshot(page)
}

// Search fills the portal's search box with term and submits it.
func (pm *PlaywrightManager) Search(ctx context.Context, url string, form scraper.SearchForm, term string) (scraper.Page, error) {
	page, err := pm.open(ctx, url)
	if err != nil {
		return scraper.Page{}, err
	}
	defer page.Close()

	if err := sleep(ctx, form.LoadSettle); err != nil {
		return scraper.Page{}, err
	}

	inputs := page.Locator(form.Input)
	if n, _ := inputs.Count(); n == 0 {
		pm.shots.CaptureAndLog(page, "search-form-missing", fmt.Sprintf("no %s on %s", form.Input, url))
		return scraper.Page{}, fmt.Errorf("%w: %s", ErrNoSearchForm, form.Input)
	}
	input := inputs.First()
	if err := input.Fill(term); err != nil {
		return scraper.Page{}, fmt.Errorf("fill %s: %w", form.Input, err)
	}
	utils.RandomDelay(200, 600)

	if form.Submit != "" {
		err = page.Locator(form.Submit).First().Click()
	} else {
		err = input.Press("Enter")
	}
	if err != nil {
		return scraper.Page{}, fmt.Errorf("submit search %q: %w", term, err)
	}

	if err := sleep(ctx, form.Settle); err != nil {
		return scraper.Page{}, err
	}
	p, err := snapshot(page)
	p.SearchTerm = term
	return p, err
}

func snapshot(page playwright.Page) (scraper.Page, error) {
	html, err := page.Content()
	if err != nil {
		return scraper.Page{}, fmt.Errorf("read content: %w", err)
	}
	text, err := page.Locator("body").InnerText()
	if err != nil {
		return scraper.Page{}, fmt.Errorf("read body text: %w", err)
	}
	return scraper.Page{URL: page.URL(), HTML: html, Text: text}, nil
}

func (pm *PlaywrightManager) Close() error {
	if err := pm.browser.Close(); err != nil {
		pm.pw.Stop()
		return err
	}
	return pm.pw.Stop()
}
