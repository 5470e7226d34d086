package scraper

import "unicode/utf8"

// Bounds is an inclusive rune-length range a title must fall in.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds rejects empty strings, stray headers and oversized text blobs.
var DefaultBounds = Bounds{Min: 3, Max: 200}

// Contains reports whether s has an acceptable length.
func (b Bounds) Contains(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < b.Min {
		return false
	}
	return b.Max <= 0 || n <= b.Max
}

// DefaultSearchTerms are typed into search-driven portals, one search each.
var DefaultSearchTerms = []string{
	"social studies",
	"history",
	"civics",
	"government",
	"economics",
	"geography",
	"humanities",
	"sociology",
	"psychology",
}

// Options carries the tunables shared by all adapters.
type Options struct {
	SearchTerms []string
	//Window is how many lines, counted from the title line, are scanned for field labels
	Window int
	//Lookahead is how many lines after a label may hold its value
	Lookahead int
	Title     Bounds
}

// DefaultOptions returns the values the portals were tuned against.
func DefaultOptions() Options {
	return Options{
		SearchTerms: append([]string(nil), DefaultSearchTerms...),
		Window:      15,
		Lookahead:   2,
		Title:       DefaultBounds,
	}
}

// WithDefaults fills zero values from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if len(o.SearchTerms) == 0 {
		o.SearchTerms = d.SearchTerms
	}
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.Lookahead <= 0 {
		o.Lookahead = d.Lookahead
	}
	if o.Title.Min <= 0 && o.Title.Max <= 0 {
		o.Title = d.Title
	}
	return o
}
