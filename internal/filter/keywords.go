package filter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keywords are the term tables the classifier matches against. Any list left
// empty in an override keeps its default.
type Keywords struct {
	Subject       []string `yaml:"subject"`
	ExcludedRoles []string `yaml:"excluded_roles"`
	RoleRescue    []string `yaml:"role_rescue"`
	Elementary    []string `yaml:"elementary"`
	Secondary     []string `yaml:"secondary"`
}

func DefaultKeywords() Keywords {
	return Keywords{
		Subject: []string{
			"social studies", "history", "civics", "government", "economics",
			"geography", "political science", "world cultures", "american studies",
			"global studies", "us history", "world history", "american history",
			"ap history", "ap government", "ap economics",
			"humanities", "sociology", "psychology", "current events",
		},
		ExcludedRoles: []string{
			"aide", "paraprofessional", "assistant", "pca",
			"custodian", "maintenance", "cafeteria", "food service",
			"secretary", "clerical", "bus driver", "transportation",
			"nurse", "support staff",
		},
		RoleRescue: []string{"teacher", "instructor"},
		Elementary: []string{
			"elementary school", "primary school", "kindergarten",
			"pre-k", "prek", "preschool",
			"1st grade", "2nd grade", "3rd grade", "4th grade", "5th grade",
			"grade 1", "grade 2", "grade 3", "grade 4", "grade 5",
			"k-5", "k-6", "k-4", "k-3",
		},
		Secondary: []string{
			"middle school", "high school", "secondary", "junior high",
			"6th grade", "7th grade", "8th grade",
			"9th grade", "10th grade", "11th grade", "12th grade",
			"grade 6", "grade 7", "grade 8",
			"grade 9", "grade 10", "grade 11", "grade 12",
			"6-12", "7-12", "6-8", "9-12",
		},
	}
}

// Merge returns k with every non-empty list in over replacing its counterpart.
func (k Keywords) Merge(over Keywords) Keywords {
	pick := func(base, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return base
	}
	return Keywords{
		Subject:       pick(k.Subject, over.Subject),
		ExcludedRoles: pick(k.ExcludedRoles, over.ExcludedRoles),
		RoleRescue:    pick(k.RoleRescue, over.RoleRescue),
		Elementary:    pick(k.Elementary, over.Elementary),
		Secondary:     pick(k.Secondary, over.Secondary),
	}
}

// normalizeText strips diacritics and lowercases.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// compileTerms builds one case-insensitive alternation that matches any term
// as a substring. With gradeGuard set, a term ending in a digit must not run
// into another digit, so "grade 1" does not match "grade 10".
func compileTerms(terms []string, gradeGuard bool) *regexp.Regexp {
	var alts []string
	for _, term := range terms {
		term = normalizeText(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		p := regexp.QuoteMeta(term)
		if last, _ := utf8.DecodeLastRuneInString(term); gradeGuard && unicode.IsDigit(last) {
			p += `(?:[^0-9]|$)`
		}
		alts = append(alts, p)
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}
