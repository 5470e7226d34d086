package powerschool

import (
	"context"
	"regexp"
	"strings"

	"school-job-scout/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

var (
	jobHref  = regexp.MustCompile(`(?i)(ViewJob|jobid|posting)`)
	jobClass = regexp.MustCompile(`(?i)(job|position|title)`)
)

type PowerSchoolScraper struct {
	opts   scraper.Options
	logger *zap.Logger
}

func NewPowerSchoolScraper(opts scraper.Options, logger *zap.Logger) *PowerSchoolScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PowerSchoolScraper{
		opts:   opts.WithDefaults(),
		logger: logger.Named("powerschool"),
	}
}

func (s *PowerSchoolScraper) Source() scraper.Source {
	return scraper.SourcePowerSchool
}

func (s *PowerSchoolScraper) DedupKey() scraper.DedupKey {
	return scraper.DedupByTitleURL
}

// Fetch gets the listing page. PowerSchool job boards are server rendered.
func (s *PowerSchoolScraper) Fetch(ctx context.Context, f scraper.Fetchers, t scraper.Target) ([]scraper.Page, error) {
	if f.HTTP == nil {
		return nil, scraper.ErrNoFetcher
	}
	html, err := f.HTTP.FetchHTML(ctx, t.URL)
	if err != nil {
		return nil, err
	}
	return []scraper.Page{{URL: t.URL, HTML: html}}, nil
}

func (s *PowerSchoolScraper) Adapt(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FirstNonEmpty(pages,
		s.each(t, jobLinks),
		s.each(t, classedContainers),
		s.each(t, listLinks),
	)
}

func (s *PowerSchoolScraper) each(t scraper.Target, find func(*goquery.Document) []*goquery.Selection) scraper.Strategy {
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
			var out []scraper.RawCandidate
			for _, a := range find(doc) {
				title := scraper.CleanText(a.Text())
				if !s.opts.Title.Contains(title) {
					continue
				}
				href, _ := a.Attr("href")
				out = append(out, scraper.RawCandidate{Title: title, URL: scraper.Resolve(base, href)})
			}
			return out
		})
	}
}

func jobLinks(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href, _ := a.Attr("href"); jobHref.MatchString(href) {
			out = append(out, a)
		}
	})
	return out
}

func classedContainers(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("div, span, td").Each(func(_ int, el *goquery.Selection) {
		class, _ := el.Attr("class")
		if !jobClass.MatchString(class) {
			return
		}
		if a := el.Find("a[href]").First(); a.Length() > 0 {
			out = append(out, a)
		}
	})
	return out
}

func listLinks(doc *goquery.Document) []*goquery.Selection {
	var out []*goquery.Selection
	doc.Find("li a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.ToLower(href)
		if strings.Contains(href, "job") || strings.Contains(href, "posting") || strings.Contains(href, "position") {
			out = append(out, a)
		}
	})
	return out
}
