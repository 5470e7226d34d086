package other

import (
	"context"
	"errors"
	"testing"

	"school-job-scout/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTP struct {
	html string
	err  error
}

func (f fakeHTTP) FetchHTML(context.Context, string) (string, error) { return f.html, f.err }

var exampleSD = scraper.Target{District: "Example SD", URL: "http://x/jobs"}

func TestExampleDistrict(t *testing.T) {
	s := NewOtherScraper(scraper.Options{}, nil)
	f := scraper.Fetchers{HTTP: fakeHTTP{html: `<html><body><a href="/postings/42">High School History Teacher</a></body></html>`}}

	pages, err := s.Fetch(context.Background(), f, exampleSD)
	require.NoError(t, err)
	jobs := scraper.Normalize(s.Adapt(pages, exampleSD), exampleSD.District, s.Source(), s.DedupKey(), scraper.DefaultBounds)

	assert.Equal(t, []scraper.Job{{
		Title:    "High School History Teacher",
		District: "Example SD",
		URL:      "http://x/postings/42",
		Source:   scraper.SourceOther,
	}}, jobs)
}

func TestAdapt_Links(t *testing.T) {
	html := `<nav><a href="/">Home</a><a href="/contact">Contact</a><a href="/a">Go</a></nav>
	<a href="/employment/openings">Current Openings</a>
	<a href="/doc.pdf">Librarian</a>
	<a href="/news">Board meeting</a>`

	got := NewOtherScraper(scraper.Options{}, nil).Adapt([]scraper.Page{{URL: "http://d.org/hr/", HTML: html}}, exampleSD)

	assert.Equal(t, []scraper.RawCandidate{
		{Title: "Current Openings", URL: "http://d.org/employment/openings"},
		{Title: "Librarian", URL: "http://d.org/doc.pdf"},
	}, got)
}

func TestAdapt_ListItems(t *testing.T) {
	html := `<ul>
	  <li>Civics Teacher (posted 9/1) <a href="/files/civics.pdf">details</a></li>
	  <li>Guidance Counselor - see office</li>
	  <li>Board minutes</li>
	</ul>`

	got := NewOtherScraper(scraper.Options{}, nil).Adapt([]scraper.Page{{URL: "http://d.org/hr", HTML: html}}, exampleSD)

	assert.Equal(t, []scraper.RawCandidate{
		{Title: "details", URL: "http://d.org/files/civics.pdf"},
		{Title: "Guidance Counselor - see office", URL: "http://d.org/hr"},
	}, got)
}

func TestAdapt_ContentBlocks(t *testing.T) {
	html := `<div class="main-content">
	  <h3>Social Studies Teacher</h3>
	  <p>Apply by Friday.</p>
	  <p>Reading Specialist <a href="/rs">info</a></p>
	</div>
	<div class="sidebar"><p>Substitute Teacher</p></div>`

	got := NewOtherScraper(scraper.Options{}, nil).Adapt([]scraper.Page{{URL: "http://d.org/hr", HTML: html}}, exampleSD)

	assert.Equal(t, []scraper.RawCandidate{
		{Title: "Social Studies Teacher", URL: "http://d.org/hr"},
		{Title: "Reading Specialist info", URL: "http://d.org/rs"},
	}, got)
}

func TestFetch_Errors(t *testing.T) {
	s := NewOtherScraper(scraper.Options{}, nil)

	_, err := s.Fetch(context.Background(), scraper.Fetchers{}, exampleSD)
	assert.ErrorIs(t, err, scraper.ErrNoFetcher)

	_, err = s.Fetch(context.Background(), scraper.Fetchers{HTTP: fakeHTTP{err: errors.New("refused")}}, exampleSD)
	assert.Error(t, err)
}
