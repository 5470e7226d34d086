// Package other handles district websites that host their own job pages
// with no recognisable portal behind them.
package other

import (
	"context"
	"regexp"
	"strings"

	"school-job-scout/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const maxTextTitle = 100

var jobKeywords = []string{
	"job", "position", "opening", "employment", "career",
	"vacancy", "hiring", "posting", "opportunity", "apply",
}

var navText = map[string]bool{
	"home": true, "about": true, "contact": true, "login": true, "search": true,
}

var jobTitle = regexp.MustCompile(`(?i)(teacher|principal|secretary|aide|coach|custodian|driver|nurse|counselor|specialist|director|coordinator|assistant|paraprofessional|substitute|tutor|librarian|technician)`)

var contentClass = regexp.MustCompile(`(?i)(content|main|body)`)

type OtherScraper struct {
	opts   scraper.Options
	logger *zap.Logger
}

func NewOtherScraper(opts scraper.Options, logger *zap.Logger) *OtherScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OtherScraper{
		opts:   opts.WithDefaults(),
		logger: logger.Named("other"),
	}
}

func (s *OtherScraper) Source() scraper.Source {
	return scraper.SourceOther
}

func (s *OtherScraper) DedupKey() scraper.DedupKey {
	return scraper.DedupByTitleURL
}

func (s *OtherScraper) Fetch(ctx context.Context, f scraper.Fetchers, t scraper.Target) ([]scraper.Page, error) {
	if f.HTTP == nil {
		return nil, scraper.ErrNoFetcher
	}
	html, err := f.HTTP.FetchHTML(ctx, t.URL)
	if err != nil {
		return nil, err
	}
	return []scraper.Page{{URL: t.URL, HTML: html}}, nil
}

// Adapt tries job-looking links, then list items, then paragraphs inside
// content containers.
func (s *OtherScraper) Adapt(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FirstNonEmpty(pages,
		s.onDocument(t, s.links),
		s.onDocument(t, listItems),
		s.onDocument(t, contentBlocks),
	)
}

func (s *OtherScraper) onDocument(t scraper.Target, extract func(doc *goquery.Document, base string) []scraper.RawCandidate) scraper.Strategy {
	return func(pages []scraper.Page) []scraper.RawCandidate {
		return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
			doc := scraper.ParseHTML(p.HTML)
			if doc == nil {
				return nil
			}
			base := p.URL
			if base == "" {
				base = t.URL
			}
			return extract(doc, base)
		})
	}
}

func (s *OtherScraper) links(doc *goquery.Document, base string) []scraper.RawCandidate {
	var out []scraper.RawCandidate
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		title := scraper.CleanText(a.Text())
		if !s.opts.Title.Contains(title) {
			return
		}
		text := strings.ToLower(title)
		if navText[text] {
			return
		}
		href, _ := a.Attr("href")
		if !hasJobKeyword(strings.ToLower(href)) && !hasJobKeyword(text) && !jobTitle.MatchString(title) {
			return
		}
		out = append(out, scraper.RawCandidate{Title: title, URL: scraper.Resolve(base, href)})
	})
	return out
}

func listItems(doc *goquery.Document, base string) []scraper.RawCandidate {
	var out []scraper.RawCandidate
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		text := scraper.CleanText(li.Text())
		if !jobTitle.MatchString(text) {
			return
		}
		a := li.Find("a").First()
		if a.Length() == 0 {
			out = append(out, scraper.RawCandidate{Title: scraper.Truncate(text, maxTextTitle), URL: base})
			return
		}
		title := scraper.CleanText(a.Text())
		if title == "" {
			title = scraper.Truncate(text, maxTextTitle)
		}
		href, _ := a.Attr("href")
		out = append(out, scraper.RawCandidate{Title: title, URL: scraper.Resolve(base, href)})
	})
	return out
}

func contentBlocks(doc *goquery.Document, base string) []scraper.RawCandidate {
	var out []scraper.RawCandidate
	doc.Find("div, article, section").Each(func(_ int, block *goquery.Selection) {
		class, _ := block.Attr("class")
		if !contentClass.MatchString(class) {
			return
		}
		block.Find("p, li, h2, h3, h4").Each(func(_ int, el *goquery.Selection) {
			text := scraper.CleanText(el.Text())
			if !jobTitle.MatchString(text) {
				return
			}
			url := base
			if href, ok := el.Find("a").First().Attr("href"); ok {
				url = scraper.Resolve(base, href)
			}
			out = append(out, scraper.RawCandidate{Title: scraper.Truncate(text, maxTextTitle), URL: url})
		})
	})
	return out
}

func hasJobKeyword(s string) bool {
	for _, kw := range jobKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
