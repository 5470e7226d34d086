package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func jobIDWindow() LineWindow {
	return LineWindow{
		Marker: func(line string) bool { return strings.Contains(line, "JobID:") },
		Labels: []Label{
			{Text: "Position Type:", Field: FieldPositionType},
			{Text: "Location:", Field: FieldLocation},
		},
		Size:      15,
		Lookahead: 2,
		Title:     DefaultBounds,
	}
}

func TestLineWindow_Scan(t *testing.T) {
	text := `Search Results

High School Social Studies Teacher
JobID: 1234
Position Type:

Secondary/Social Studies
Location:
Central High School

Grade 7 Civics
JobID: 1240
Location:
Middle School North`

	got := jobIDWindow().Scan(Lines(text))

	assert.Equal(t, []RawCandidate{
		{Title: "High School Social Studies Teacher", PositionType: "Secondary/Social Studies", Location: "Central High School"},
		{Title: "Grade 7 Civics", Location: "Middle School North"},
	}, got)
}

func TestLineWindow_ValueBeyondLookahead(t *testing.T) {
	text := "World History Teacher\nJobID: 1\nLocation:\n\n\nEast HS"

	got := jobIDWindow().Scan(Lines(text))

	if assert.Len(t, got, 1) {
		assert.Empty(t, got[0].Location)
	}
}

func TestLineWindow_WindowIsBounded(t *testing.T) {
	lines := []string{"Economics Teacher", "JobID: 9"}
	for i := 0; i < 20; i++ {
		lines = append(lines, "filler")
	}
	lines = append(lines, "Location:", "Too Far HS")

	got := jobIDWindow().Scan(lines)

	if assert.Len(t, got, 1) {
		assert.Empty(t, got[0].Location)
	}
}

func TestLineWindow_FirstLabelWins(t *testing.T) {
	text := "Geography Teacher\nJobID: 3\nLocation:\nNorth HS\nLocation:\nSouth HS"

	got := jobIDWindow().Scan(Lines(text))

	if assert.Len(t, got, 1) {
		assert.Equal(t, "North HS", got[0].Location)
	}
}

func TestLineWindow_NoTitle(t *testing.T) {
	assert.Empty(t, jobIDWindow().Scan(Lines("JobID: 1\nLocation:\nX")))
	assert.Empty(t, jobIDWindow().Scan(Lines("ab\nJobID: 1")))
	assert.Empty(t, LineWindow{}.Scan(Lines("anything")))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://x/postings/42", Resolve("http://x/jobs", "/postings/42"))
	assert.Equal(t, "http://x/a/b", Resolve("http://x/a/", "b"))
	assert.Equal(t, "https://other/p", Resolve("http://x/jobs", "https://other/p"))
	assert.Equal(t, "http://x/jobs", Resolve("http://x/jobs", ""))
}

func TestCleanAndTruncate(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
}
