package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	fail  map[string]bool
	terms []string
}

func (r *stubRenderer) Render(_ context.Context, url string, _ time.Duration) (Page, error) {
	return Page{URL: url}, nil
}

func (r *stubRenderer) Search(_ context.Context, url string, _ SearchForm, term string) (Page, error) {
	r.terms = append(r.terms, term)
	if r.fail[term] {
		return Page{}, errors.New("timeout")
	}
	return Page{URL: url, Text: "results for " + term}, nil
}

func TestSearchEach_SkipsFailedTerms(t *testing.T) {
	r := &stubRenderer{fail: map[string]bool{"civics": true}}

	pages, err := SearchEach(context.Background(), r, "http://x", SearchForm{}, []string{"history", "civics", "economics"})

	require.NoError(t, err)
	assert.Equal(t, []string{"history", "civics", "economics"}, r.terms)
	if assert.Len(t, pages, 2) {
		assert.Equal(t, "history", pages[0].SearchTerm)
		assert.Equal(t, "economics", pages[1].SearchTerm)
	}
}

func TestSearchEach_AllFailed(t *testing.T) {
	r := &stubRenderer{fail: map[string]bool{"history": true}}

	_, err := SearchEach(context.Background(), r, "http://x", SearchForm{}, []string{"history"})

	assert.Error(t, err)
}

func TestSearchEach_NoRenderer(t *testing.T) {
	_, err := SearchEach(context.Background(), nil, "http://x", SearchForm{}, []string{"history"})
	assert.ErrorIs(t, err, ErrNoRenderer)
}

func TestSearchEach_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SearchEach(ctx, &stubRenderer{}, "http://x", SearchForm{}, []string{"history"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestFoldPages_TagsSearchTerm(t *testing.T) {
	pages := []Page{{SearchTerm: "history"}, {SearchTerm: "civics"}}

	got := FoldPages(pages, func(p Page) []RawCandidate {
		if p.SearchTerm == "civics" {
			return []RawCandidate{{Title: "A", SearchTerm: "kept"}, {Title: "B"}}
		}
		return []RawCandidate{{Title: "C"}}
	})

	assert.Equal(t, []RawCandidate{
		{Title: "C", SearchTerm: "history"},
		{Title: "A", SearchTerm: "kept"},
		{Title: "B", SearchTerm: "civics"},
	}, got)
}

func TestFirstNonEmpty(t *testing.T) {
	calls := 0
	empty := func([]Page) []RawCandidate { calls++; return nil }
	hit := func([]Page) []RawCandidate { calls++; return []RawCandidate{{Title: "x"}} }
	never := func([]Page) []RawCandidate { t.Fatal("later strategy ran"); return nil }

	got := FirstNonEmpty(nil, empty, hit, never)

	assert.Len(t, got, 1)
	assert.Equal(t, 2, calls)
	assert.Nil(t, FirstNonEmpty(nil, empty))
}
