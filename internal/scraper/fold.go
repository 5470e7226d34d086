package scraper

import (
	"context"
	"errors"
	"fmt"
)

// Strategy is one way of pulling candidates from fetched pages.
type Strategy func(pages []Page) []RawCandidate

// FirstNonEmpty runs strategies in priority order and returns the result of
// the first one that yields anything.
func FirstNonEmpty(pages []Page, strategies ...Strategy) []RawCandidate {
	for _, s := range strategies {
		if out := s(pages); len(out) > 0 {
			return out
		}
	}
	return nil
}

// FoldPages applies extract to each page in order and concatenates the
// results into one sequence. Candidates without a search term inherit the
// term of the page they came from.
func FoldPages(pages []Page, extract func(Page) []RawCandidate) []RawCandidate {
	var acc []RawCandidate
	for _, p := range pages {
		for _, c := range extract(p) {
			if c.SearchTerm == "" {
				c.SearchTerm = p.SearchTerm
			}
			acc = append(acc, c)
		}
	}
	return acc
}

// SearchEach runs one search per term and returns the pages in term order.
// A failed term is skipped; the call fails only when every term failed.
func SearchEach(ctx context.Context, r Renderer, url string, form SearchForm, terms []string) ([]Page, error) {
	if r == nil {
		return nil, ErrNoRenderer
	}
	var (
		pages []Page
		errs  []error
	)
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		p, err := r.Search(ctx, url, form, term)
		if err != nil {
			errs = append(errs, fmt.Errorf("search %q: %w", term, err))
			continue
		}
		p.SearchTerm = term
		pages = append(pages, p)
	}
	if len(pages) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return pages, nil
}

// ErrNoRenderer is returned by adapters that need a browser when none is configured.
var ErrNoRenderer = errors.New("no browser renderer configured")

// ErrNoFetcher is returned by adapters that need plain HTTP when none is configured.
var ErrNoFetcher = errors.New("no HTTP fetcher configured")
