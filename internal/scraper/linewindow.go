package scraper

import "strings"

// Field is a RawCandidate attribute a label can fill.
type Field int

const (
	FieldPositionType Field = iota
	FieldLocation
	FieldCategory
)

// Label maps a literal label in rendered text to the field its value fills.
type Label struct {
	Text  string
	Field Field
}

// LineWindow extracts postings from rendered page text where each posting is
// a title line followed by a marker line and labelled fields.
type LineWindow struct {
	//Marker is true for lines that announce a posting
	Marker func(line string) bool
	Labels []Label
	//Size counts lines from the title line
	Size      int
	Lookahead int
	Title     Bounds
}

// Scan walks the lines and returns one candidate per marker whose title is in
// bounds. The nearest non-empty line above a marker is the title. Within the
// window the first occurrence of a label wins; its value is the first
// non-empty line among the next Lookahead lines.
func (w LineWindow) Scan(lines []string) []RawCandidate {
	if w.Marker == nil {
		return nil
	}
	var out []RawCandidate
	for i, line := range lines {
		if !w.Marker(line) {
			continue
		}
		t := w.titleIndex(lines, i)
		if t < 0 {
			continue
		}
		title := strings.TrimSpace(lines[t])
		if !w.Title.Contains(title) {
			continue
		}

		c := RawCandidate{Title: title}
		end := min(t+w.Size, len(lines))
		filled := make(map[Field]bool, len(w.Labels))
		for j := i; j < end; j++ {
			for _, l := range w.Labels {
				if filled[l.Field] || !strings.Contains(lines[j], l.Text) {
					continue
				}
				if v := w.valueAfter(lines, j); v != "" {
					setField(&c, l.Field, v)
					filled[l.Field] = true
				}
			}
		}
		out = append(out, c)
	}
	return out
}

func (w LineWindow) titleIndex(lines []string, marker int) int {
	for j := marker - 1; j >= 0; j-- {
		if strings.TrimSpace(lines[j]) == "" {
			continue
		}
		if w.Marker(lines[j]) {
			return -1
		}
		return j
	}
	return -1
}

func (w LineWindow) valueAfter(lines []string, label int) string {
	end := min(label+1+w.Lookahead, len(lines))
	for k := label + 1; k < end; k++ {
		if v := strings.TrimSpace(lines[k]); v != "" {
			return v
		}
	}
	return ""
}

func setField(c *RawCandidate, f Field, v string) {
	switch f {
	case FieldPositionType:
		c.PositionType = v
	case FieldLocation:
		c.Location = v
	case FieldCategory:
		c.Category = v
	}
}
