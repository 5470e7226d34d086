package paeducator

import (
	"context"
	"testing"
	"time"

	"school-job-scout/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = scraper.Target{District: "Easton Area School District", URL: "https://www.paeducator.net/Search", Filter: "Easton Area"}

func TestSearchTerm(t *testing.T) {
	assert.Equal(t, "Easton Area", SearchTerm(target))
	assert.Equal(t, "Easton Area School District", SearchTerm(scraper.Target{District: " Easton Area School District "}))
}

func TestAdapt_JobLinks(t *testing.T) {
	html := `<div class="result">
	  <a href="/job/881">Social Studies Teacher</a>
	  <span>Easton Area SD</span>
	</div>
	<div class="result">
	  <a href="/job/882">Art Teacher</a>
	  <span>Bethlehem Area SD</span>
	</div>
	<a href="/posting/9">Easton Area Librarian</a>`

	s := NewPAEducatorScraper(scraper.Options{}, nil)
	got := s.Adapt([]scraper.Page{{URL: target.URL, HTML: html}}, target)

	assert.Equal(t, []scraper.RawCandidate{
		{Title: "Social Studies Teacher", URL: "https://www.paeducator.net/job/881"},
		{Title: "Easton Area Librarian", URL: "https://www.paeducator.net/posting/9"},
	}, got)
}

func TestAdapt_MentionLines(t *testing.T) {
	text := `Northampton
History Teacher - Easton Area SD
Contract
Easton Area
EASTON AREA HIGH SCHOOL - Civics Teacher
Biology Teacher - Nazareth Area SD`

	s := NewPAEducatorScraper(scraper.Options{}, nil)
	got := s.Adapt([]scraper.Page{{Text: text}}, target)

	assert.Equal(t, []scraper.RawCandidate{
		{Title: "History Teacher", URL: target.URL},
		{Title: "Easton Area", URL: target.URL},
		{Title: "EASTON AREA HIGH SCHOOL - Civics Teacher", URL: target.URL},
	}, got)
}

func TestStripDistrictSuffix(t *testing.T) {
	assert.Equal(t, "Teacher", stripDistrictSuffix("Teacher - Easton Area SD", "easton area"))
	assert.Equal(t, "A - B - Teacher", stripDistrictSuffix("A - B - Teacher", "easton"))
	assert.Equal(t, "Teacher", stripDistrictSuffix("Teacher", "easton"))
}

type fakeBrowser struct{ term string }

func (b *fakeBrowser) Render(context.Context, string, time.Duration) (scraper.Page, error) {
	return scraper.Page{}, nil
}

func (b *fakeBrowser) Search(_ context.Context, url string, _ scraper.SearchForm, term string) (scraper.Page, error) {
	b.term = term
	return scraper.Page{URL: url, Text: "History Teacher - " + term}, nil
}

func TestFetch(t *testing.T) {
	s := NewPAEducatorScraper(scraper.Options{}, nil)

	pages, err := s.Fetch(context.Background(), scraper.Fetchers{}, target)
	require.NoError(t, err)
	assert.Empty(t, pages)

	b := &fakeBrowser{}
	pages, err = s.Fetch(context.Background(), scraper.Fetchers{Browser: b}, target)
	require.NoError(t, err)
	assert.Equal(t, "Easton Area", b.term)
	require.Len(t, pages, 1)
	assert.Empty(t, pages[0].SearchTerm)
}

func TestFetch_DistrictLookupIsNotASubjectSearch(t *testing.T) {
	s := NewPAEducatorScraper(scraper.Options{}, nil)
	gov := scraper.Target{District: "Government Hill SD", URL: "https://www.paeducator.net/Search"}

	pages, err := s.Fetch(context.Background(), scraper.Fetchers{Browser: &fakeBrowser{}}, gov)
	require.NoError(t, err)
	jobs := scraper.Normalize(s.Adapt(pages, gov), gov.District, s.Source(), s.DedupKey(), TitleBounds)

	require.Len(t, jobs, 1)
	assert.Equal(t, "History Teacher", jobs[0].Title)
	assert.Empty(t, jobs[0].SearchTerm)
}
