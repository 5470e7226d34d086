package schoolspring

import (
	"context"
	"regexp"
	"strings"
	"time"

	"school-job-scout/internal/scraper"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	renderSettle = 4 * time.Second
	maxTextHits  = 10
)

var (
	// CardBounds applies to container titles and job links.
	CardBounds = scraper.Bounds{Min: 4, Max: 149}
	// TextBounds applies to titles pulled out of the raw page text.
	TextBounds = scraper.Bounds{Min: 6, Max: 99}
)

var noise = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^open in`),
	regexp.MustCompile(`(?i)^report`),
	regexp.MustCompile(`(?i)^terms`),
	regexp.MustCompile(`(?i)^privacy`),
	regexp.MustCompile(`(?i)^help`),
	regexp.MustCompile(`(?i)^contact`),
	regexp.MustCompile(`(?i)^sign in`),
	regexp.MustCompile(`(?i)^sign up`),
	regexp.MustCompile(`(?i)^log in`),
	regexp.MustCompile(`(?i)^register`),
	regexp.MustCompile(`(?i)@.*\.(org|com|edu|net)`),
	regexp.MustCompile(`(?i)^google`),
	regexp.MustCompile(`(?i)^maps`),
	regexp.MustCompile(`(?i)^http`),
}

var jobTitleText = regexp.MustCompile(`(?i)(Teacher|Principal|Counselor|Secretary|Aide|Coach|Driver|Nurse|Custodian|Paraprofessional|Substitute|Assistant|Director|Coordinator|Specialist|Technician)[^,\n]{0,50}`)

// IsNoise reports whether text is page chrome rather than a posting title.
func IsNoise(text string) bool {
	for _, re := range noise {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

type SchoolSpringScraper struct {
	opts   scraper.Options
	logger *zap.Logger
}

func NewSchoolSpringScraper(opts scraper.Options, logger *zap.Logger) *SchoolSpringScraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolSpringScraper{
		opts:   opts.WithDefaults(),
		logger: logger.Named("schoolspring"),
	}
}

func (s *SchoolSpringScraper) Source() scraper.Source {
	return scraper.SourceSchoolSpring
}

func (s *SchoolSpringScraper) DedupKey() scraper.DedupKey {
	return scraper.DedupByTitle
}

// Fetch renders the district page. The board is a single page app, so
// without a browser there is nothing to read.
func (s *SchoolSpringScraper) Fetch(ctx context.Context, f scraper.Fetchers, t scraper.Target) ([]scraper.Page, error) {
	if f.Browser == nil {
		s.logger.Info("⏭️ no browser renderer, skipping", zap.String("district", t.District))
		return nil, nil
	}
	p, err := f.Browser.Render(ctx, t.URL, renderSettle)
	if err != nil {
		return nil, err
	}
	return []scraper.Page{p}, nil
}

func (s *SchoolSpringScraper) Adapt(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FirstNonEmpty(pages,
		func(pages []scraper.Page) []scraper.RawCandidate { return jobCards(pages, t) },
		func(pages []scraper.Page) []scraper.RawCandidate { return jobLinks(pages, t) },
		func(pages []scraper.Page) []scraper.RawCandidate { return textMatches(pages, t) },
	)
}

func jobCards(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		doc := scraper.ParseHTML(p.HTML)
		if doc == nil {
			return nil
		}
		var out []scraper.RawCandidate
		doc.Find(`[class*="job"], [class*="posting"], [class*="position"], [class*="vacancy"]`).Each(func(_ int, card *goquery.Selection) {
			heading := card.Find(`h2, h3, h4, [class*="title"]`).First()
			if heading.Length() == 0 {
				return
			}
			title := scraper.CleanText(heading.Text())
			if !CardBounds.Contains(title) || IsNoise(title) {
				return
			}
			href, _ := card.Find("a").First().Attr("href")
			out = append(out, scraper.RawCandidate{Title: title, URL: scraper.Resolve(t.URL, href)})
		})
		return out
	})
}

func jobLinks(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		doc := scraper.ParseHTML(p.HTML)
		if doc == nil {
			return nil
		}
		var out []scraper.RawCandidate
		doc.Find(`a[href*="/job/"], a[href*="/posting/"], a[href*="jobID"]`).Each(func(_ int, a *goquery.Selection) {
			title := scraper.CleanText(a.Text())
			if !CardBounds.Contains(title) || IsNoise(title) {
				return
			}
			href, _ := a.Attr("href")
			out = append(out, scraper.RawCandidate{Title: title, URL: scraper.Resolve(t.URL, href)})
		})
		return out
	})
}

func textMatches(pages []scraper.Page, t scraper.Target) []scraper.RawCandidate {
	return scraper.FoldPages(pages, func(p scraper.Page) []scraper.RawCandidate {
		var out []scraper.RawCandidate
		for _, m := range jobTitleText.FindAllString(p.Text, maxTextHits) {
			title := strings.TrimSpace(m)
			if !TextBounds.Contains(title) || IsNoise(title) {
				continue
			}
			out = append(out, scraper.RawCandidate{Title: title, URL: t.URL})
		}
		return out
	})
}
