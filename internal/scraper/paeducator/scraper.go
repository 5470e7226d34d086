package paeducator

import (
	"context"
	"strings"
	"time"

	"school-job-scout/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// SearchForm types into the first input on the page and presses Enter.
var SearchForm = scraper.SearchForm{
	Input:      "input",
	LoadSettle: 3 * time.Second,
	Settle:     4 * time.Second,
}

// TitleBounds requires more than three characters.
var TitleBounds = scraper.Bounds{Min: 4, Max: 199}

const maxLineTitle = 150

type PAEducatorScraper struct {
	opts   scraper.Options
	logger *zap.Logger
}

func NewPAEducatorScraper(opts scraper.Options, logger *zap.Logger) *PAEducatorScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PAEducatorScraper{
		opts:   opts.WithDefaults(),
		logger: logger.Named("paeducator"),
	}
}

func (s *PAEducatorScraper) Source() scraper.Source {
	return scraper.SourcePAEducator
}

func (s *PAEducatorScraper) DedupKey() scraper.DedupKey {
	return scraper.DedupByTitle
}

// SearchTerm is what the statewide board is searched for: the district's
// filter hint, or its name.
func SearchTerm(t scraper.Target) string {
	if f := strings.TrimSpace(t.Filter); f != "" {
		return f
	}
	return strings.TrimSpace(t.District)
}

// Fetch searches the board once for the district. Without a browser there is
// nothing to read, so the district is skipped. The term names a district, not a
// subject, so the page is not tagged with it.
func (s *PAEducatorScraper) Fetch(ctx context.Context, f scraper.Fetchers, t scraper.Target) ([]scraper.Page, error) {
	if f.Browser == nil {
		s.logger.Info("⏭️ no browser renderer, skipping", zap.String("district", t.District))
		return nil, nil
	}
	term := SearchTerm(t)
	p, err := f.Browser.Search(ctx, t.URL, SearchForm, term)
	if err != nil {
		return nil, err
	}
	p.SearchTerm = ""
	return []scraper.Page{p}, nil
}

func (s *PAEducatorScraper) Adapt(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	term := SearchTerm(t)
	if term == "" {
		return nil
	}
	return scraper.FirstNonEmpty(pages,
		func(pages []scraper.Page) []scraper.RawCandidate { return jobLinks(pages, t, term) },
		func(pages []scraper.Page) []scraper.RawCandidate { return mentionLines(pages, t, term) },
	)
}

func jobLinks(pages []scraper.Page, t scraper.Target, term string) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		doc := scraper.ParseHTML(p.HTML)
		if doc == nil {
			return nil
		}
		base := firstNonEmpty(p.URL, t.URL)
		var out []scraper.RawCandidate
		doc.Find(`a[href*="/job/"], a[href*="/posting/"]`).Each(func(_ int, a *goquery.Selection) {
			text := scraper.CleanText(a.Text())
			if !scraper.ContainsFold(text, term) && !scraper.ContainsFold(a.Closest("div").Text(), term) {
				return
			}
			if !TitleBounds.Contains(text) {
				return
			}
			href, _ := a.Attr("href")
			out = append(out, scraper.RawCandidate{Title: text, URL: scraper.Resolve(base, href)})
		})
		return out
	})
}

func mentionLines(pages []scraper.Page, t scraper.Target, term string) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		var out []scraper.RawCandidate
		for _, line := range scraper.Lines(p.Text) {
			line = strings.TrimSpace(line)
			if line == "" || !scraper.ContainsFold(line, term) {
				continue
			}
			title := scraper.Truncate(stripDistrictSuffix(line, term), maxLineTitle)
			if !TitleBounds.Contains(title) {
				continue
			}
			out = append(out, scraper.RawCandidate{Title: title, URL: t.URL})
		}
		return out
	})
}

// stripDistrictSuffix turns "Social Studies Teacher - Easton Area SD" into
// "Social Studies Teacher" when the suffix names the search term.
func stripDistrictSuffix(line, term string) string {
	i := strings.LastIndex(line, " - ")
	if i < 0 || !scraper.ContainsFold(line[i+3:], term) {
		return line
	}
	return strings.TrimSpace(line[:i])
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
