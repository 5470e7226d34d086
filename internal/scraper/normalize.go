package scraper

import "strings"

// DedupKey selects how duplicates inside one adapter call are detected.
type DedupKey int

const (
	// DedupByTitle collapses case-insensitive title matches. Search-driven
	// portals surface the same posting once per matching search term.
	DedupByTitle DedupKey = iota
	// DedupByTitleURL keeps postings that share a title but live at distinct URLs.
	DedupByTitleURL
)

// Normalize coerces raw candidates into jobs for one district and source.
// Candidates missing a title or URL, or whose title is out of bounds, are
// dropped. The first occurrence of each dedup key wins.
func Normalize(raw []RawCandidate, district string, source Source, key DedupKey, bounds Bounds) []Job {
	district = strings.TrimSpace(district)
	if district == "" || len(raw) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(raw))
	jobs := make([]Job, 0, len(raw))
	for _, c := range raw {
		job := Job{
			Title:        CleanText(c.Title),
			District:     district,
			URL:          strings.TrimSpace(c.URL),
			PositionType: CleanText(c.PositionType),
			Location:     CleanText(c.Location),
			Category:     CleanText(c.Category),
			SearchTerm:   strings.TrimSpace(c.SearchTerm),
			Source:       source,
		}
		if job.URL == "" || !bounds.Contains(job.Title) {
			continue
		}

		k := dedupKey(job, key)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		jobs = append(jobs, job)
	}
	return jobs
}

func dedupKey(job Job, key DedupKey) string {
	if key == DedupByTitleURL {
		return job.Title + "\x00" + job.URL
	}
	return strings.ToLower(job.Title)
}
