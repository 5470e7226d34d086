// Define the job record every portal adapter produces
// and the contract adapters implement

package scraper

import (
	"context"
	"time"
)

// Source names the adapter family that produced a job.
type Source string

const (
	SourceAppliTrack   Source = "AppliTrack"
	SourcePowerSchool  Source = "PowerSchool"
	SourcePAEducator   Source = "PAEducator"
	SourceSchoolSpring Source = "SchoolSpring"
	SourceOther        Source = "Other"
)

// Sources lists every adapter family in a stable order.
var Sources = []Source{SourceAppliTrack, SourcePowerSchool, SourcePAEducator, SourceSchoolSpring, SourceOther}

// Job is the canonical posting. Optional fields are left empty when the portal
// does not expose them and are omitted from JSON output.
type Job struct {
	Title        string `json:"title"`
	District     string `json:"district"`
	URL          string `json:"url"`
	PositionType string `json:"position_type,omitempty"`
	Location     string `json:"location,omitempty"`
	Category     string `json:"category,omitempty"`
	SearchTerm   string `json:"search_term,omitempty"`
	Source       Source `json:"source"`
}

// RawCandidate is what an extraction strategy pulls off a page before normalization.
type RawCandidate struct {
	Title        string
	URL          string
	PositionType string
	Location     string
	Category     string
	SearchTerm   string
}

// Page is fetched content handed to an adapter. HTML and Text may each be
// empty; an empty page is treated the same as a page with no listings.
type Page struct {
	URL        string
	HTML       string
	Text       string
	SearchTerm string
}

// Target is one portal to scrape for one district.
type Target struct {
	District string
	URL      string
	Filter   string
}

// SearchForm describes the interactive search box of a rendered portal.
type SearchForm struct {
	Input      string
	Submit     string
	LoadSettle time.Duration
	Settle     time.Duration
}

// HTMLFetcher retrieves raw server-rendered markup.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, url string) (string, error)
}

// Renderer drives a real browser for JavaScript-rendered portals.
type Renderer interface {
	Render(ctx context.Context, url string, settle time.Duration) (Page, error)
	Search(ctx context.Context, url string, form SearchForm, term string) (Page, error)
}

// Fetchers bundles the content sources an adapter may use. Browser is nil when
// no renderer is configured.
type Fetchers struct {
	HTTP    HTMLFetcher
	Browser Renderer
}

// Adapter is one portal family. Fetch is the only part that talks to the
// network; Adapt is pure and never fails.
type Adapter interface {
	//Source is the provenance stamped on produced jobs
	Source() Source

	//Fetch retrieves the pages this portal needs
	Fetch(ctx context.Context, f Fetchers, t Target) ([]Page, error)

	//Adapt turns fetched pages into raw candidates
	Adapt(pages []Page, t Target) []RawCandidate

	//DedupKey is how the normalizer collapses duplicates for this portal
	DedupKey() DedupKey
}
