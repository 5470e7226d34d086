package powerschool

import (
	"testing"

	"school-job-scout/internal/scraper"

	"github.com/stretchr/testify/assert"
)

var target = scraper.Target{District: "Hill SD", URL: "https://hill.powerschool.com/careers/"}

func TestAdapt_StrategyOrder(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []scraper.RawCandidate
	}{
		{
			name: "job links",
			html: `<a href="ViewJob.aspx?id=7">History Teacher</a>
			       <a href="/about">About us</a>
			       <div class="job-card"><a href="/x">Ignored while links match</a></div>`,
			want: []scraper.RawCandidate{{Title: "History Teacher", URL: "https://hill.powerschool.com/careers/ViewJob.aspx?id=7"}},
		},
		{
			name: "classed containers",
			html: `<table><tr><td class="PositionTitle"><a href="/apply/12">Civics Teacher</a></td></tr></table>
			       <span class="footer"><a href="/privacy">Privacy</a></span>`,
			want: []scraper.RawCandidate{{Title: "Civics Teacher", URL: "https://hill.powerschool.com/apply/12"}},
		},
		{
			name: "list links",
			html: `<ul><li><a href="/Careers/Position/3">Geography Teacher</a></li><li><a href="/news">News</a></li></ul>`,
			want: []scraper.RawCandidate{{Title: "Geography Teacher", URL: "https://hill.powerschool.com/Careers/Position/3"}},
		},
		{
			name: "nothing",
			html: `<p>No openings.</p>`,
		},
	}

	s := NewPowerSchoolScraper(scraper.Options{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Adapt([]scraper.Page{{URL: target.URL, HTML: tt.html}}, target)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdapt_ShortTitlesDropped(t *testing.T) {
	s := NewPowerSchoolScraper(scraper.Options{}, nil)

	got := s.Adapt([]scraper.Page{{HTML: `<a href="/jobid/1">Go</a><a href="/jobid/2">Art Teacher</a>`}}, target)

	assert.Equal(t, []scraper.RawCandidate{{Title: "Art Teacher", URL: "https://hill.powerschool.com/jobid/2"}}, got)
}

func TestAdapt_DuplicateContainersCollapse(t *testing.T) {
	s := NewPowerSchoolScraper(scraper.Options{}, nil)
	html := `<div class="job-list"><div class="job-row"><a href="/r/1">Psychology Teacher</a></div></div>`

	raw := s.Adapt([]scraper.Page{{URL: target.URL, HTML: html}}, target)
	assert.Len(t, raw, 2)

	jobs := scraper.Normalize(raw, target.District, s.Source(), s.DedupKey(), scraper.DefaultBounds)
	assert.Len(t, jobs, 1)
}
