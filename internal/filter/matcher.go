package filter

import (
	"regexp"
	"strings"

	"school-job-scout/internal/scraper"
)

// Classifier decides whether a posting is a secondary social studies
// teaching job. It only reads jobs.
type Classifier struct {
	subject    *regexp.Regexp
	excluded   *regexp.Regexp
	rescue     *regexp.Regexp
	elementary *regexp.Regexp
	secondary  *regexp.Regexp
}

func NewClassifier(k Keywords) *Classifier {
	return &Classifier{
		subject:    compileTerms(k.Subject, false),
		excluded:   compileTerms(k.ExcludedRoles, false),
		rescue:     compileTerms(k.RoleRescue, false),
		elementary: compileTerms(k.Elementary, true),
		secondary:  compileTerms(k.Secondary, true),
	}
}

// SubjectOK is true when a subject term appears in the title, position type,
// location or category, or when the job was found by searching for one.
func (c *Classifier) SubjectOK(job scraper.Job) bool {
	text := joined(job.Title, job.PositionType, job.Location, job.Category)
	if matches(c.subject, text) {
		return true
	}
	return job.SearchTerm != "" && matches(c.subject, normalizeText(job.SearchTerm))
}

// PositionOK rejects support roles unless the text also names a teaching role.
func (c *Classifier) PositionOK(job scraper.Job) bool {
	text := joined(job.Title, job.PositionType)
	if !matches(c.excluded, text) {
		return true
	}
	return matches(c.rescue, text)
}

// GradeOK only rejects explicit elementary markers. Secondary markers and
// unspecified grade levels both pass.
func (c *Classifier) GradeOK(job scraper.Job) bool {
	return !matches(c.elementary, joined(job.Title, job.Location))
}

func (c *Classifier) IsRelevant(job scraper.Job) bool {
	return c.SubjectOK(job) && c.PositionOK(job) && c.GradeOK(job)
}

// Filter keeps relevant jobs in their original order.
func (c *Classifier) Filter(jobs []scraper.Job) []scraper.Job {
	out := make([]scraper.Job, 0, len(jobs))
	for _, j := range jobs {
		if c.IsRelevant(j) {
			out = append(out, j)
		}
	}
	return out
}

// Verdict is the per-predicate outcome for one job, with the terms that decided it.
type Verdict struct {
	Subject     bool
	Position    bool
	Grade       bool
	SubjectTerm string
	RoleTerm    string
	GradeTerm   string
}

func (v Verdict) Relevant() bool {
	return v.Subject && v.Position && v.Grade
}

// Explain reports why a job was kept or dropped.
func (c *Classifier) Explain(job scraper.Job) Verdict {
	v := Verdict{
		Subject:  c.SubjectOK(job),
		Position: c.PositionOK(job),
		Grade:    c.GradeOK(job),
	}
	v.SubjectTerm = find(c.subject, joined(job.Title, job.PositionType, job.Location, job.Category))
	if v.SubjectTerm == "" && v.Subject {
		v.SubjectTerm = find(c.subject, normalizeText(job.SearchTerm))
	}
	v.RoleTerm = find(c.excluded, joined(job.Title, job.PositionType))
	gradeText := joined(job.Title, job.Location)
	if v.GradeTerm = find(c.elementary, gradeText); v.GradeTerm == "" {
		v.GradeTerm = find(c.secondary, gradeText)
	}
	return v
}

func joined(parts ...string) string {
	return normalizeText(strings.Join(parts, " "))
}

func matches(re *regexp.Regexp, text string) bool {
	return re != nil && re.MatchString(text)
}

func find(re *regexp.Regexp, text string) string {
	if re == nil {
		return ""
	}
	m := re.FindString(text)
	return strings.TrimRight(strings.TrimSpace(m), " ,.;:)/-")
}
