package applitrack

import (
	"context"
	"regexp"
	"strings"
	"time"

	"school-job-scout/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// SearchForm is the AppliTrack posting search box.
var SearchForm = scraper.SearchForm{
	Input:      "#AppliTrackPostingSearch",
	Submit:     "#LnkBtnSearch",
	LoadSettle: 2 * time.Second,
	Settle:     4 * time.Second,
}

// TitleBounds is tighter than the default; shorter lines above JobID are
// usually section headers.
var TitleBounds = scraper.Bounds{Min: 6, Max: 199}

var categoryText = regexp.MustCompile(`^(.+?)\s*\((\d+)\)$`)

type AppliTrackScraper struct {
	opts   scraper.Options
	logger *zap.Logger
}

func NewAppliTrackScraper(opts scraper.Options, logger *zap.Logger) *AppliTrackScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppliTrackScraper{
		opts:   opts.WithDefaults(),
		logger: logger.Named("applitrack"),
	}
}

func (s *AppliTrackScraper) Source() scraper.Source {
	return scraper.SourceAppliTrack
}

func (s *AppliTrackScraper) DedupKey() scraper.DedupKey {
	return scraper.DedupByTitle
}

// Fetch runs one search per term when a browser is available and also keeps
// the static landing page for the category fallback.
func (s *AppliTrackScraper) Fetch(ctx context.Context, f scraper.Fetchers, t scraper.Target) ([]scraper.Page, error) {
	var pages []scraper.Page
	if f.Browser != nil {
		searched, err := scraper.SearchEach(ctx, f.Browser, t.URL, SearchForm, s.opts.SearchTerms)
		if err != nil {
			s.logger.Warn("⚠️ search failed, trying category links",
				zap.String("district", t.District), zap.Error(err))
		}
		pages = append(pages, searched...)
	}
	if f.HTTP == nil {
		if len(pages) == 0 {
			return nil, scraper.ErrNoFetcher
		}
		return pages, nil
	}

	html, err := f.HTTP.FetchHTML(ctx, t.URL)
	if err != nil {
		if len(pages) > 0 {
			return pages, nil
		}
		return nil, err
	}
	return append(pages, scraper.Page{URL: t.URL, HTML: html}), nil
}

// Adapt prefers rendered search results and falls back to category links.
func (s *AppliTrackScraper) Adapt(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FirstNonEmpty(pages,
		func(pages []scraper.Page) []scraper.RawCandidate { return s.fromSearchText(pages, t) },
		func(pages []scraper.Page) []scraper.RawCandidate { return s.fromCategories(pages, t) },
	)
}

func (s *AppliTrackScraper) window() scraper.LineWindow {
	return scraper.LineWindow{
		Marker: func(line string) bool { return strings.Contains(line, "JobID:") },
		Labels: []scraper.Label{
			{Text: "Position Type:", Field: scraper.FieldPositionType},
			{Text: "Location:", Field: scraper.FieldLocation},
		},
		Size:      s.opts.Window,
		Lookahead: s.opts.Lookahead,
		Title:     TitleBounds,
	}
}

func (s *AppliTrackScraper) fromSearchText(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	w := s.window()
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		if p.SearchTerm == "" || p.Text == "" {
			return nil
		}
		found := w.Scan(scraper.Lines(p.Text))
		//search results have no per-posting link; the portal URL is the stable one
		for i := range found {
			found[i].URL = t.URL
		}
		return found
	})
}

func (s *AppliTrackScraper) fromCategories(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		doc := scraper.ParseHTML(p.HTML)
		if doc == nil {
			return nil
		}
		var out []scraper.RawCandidate
		doc.Find(`a[href*="Category="]`).Each(func(_ int, a *goquery.Selection) {
			m := categoryText.FindStringSubmatch(strings.TrimSpace(a.Text()))
			if m == nil {
				return
			}
			href, _ := a.Attr("href")
			name := strings.TrimSpace(m[1])
			out = append(out, scraper.RawCandidate{
				Title:    name,
				Category: name,
				URL:      scraper.Resolve(pageURL(p, t), href),
			})
		})
		return out
	})
}

func pageURL(p scraper.Page, t scraper.Target) string {
	if p.URL != "" {
		return p.URL
	}
	return t.URL
}
