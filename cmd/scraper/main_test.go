package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"school-job-scout/internal/config"
	"school-job-scout/internal/filter"
	"school-job-scout/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const districtsJSON = `{"schools": [
  {"name": "Lincoln SD", "type": "AppliTrack", "url": "https://www.applitrack.com/lincoln/onlineapp/"},
  {"name": "Adams Area SD", "type": "Multiple", "urls": [
    {"type": "PowerSchool", "url": "https://adams.powerschool.com/"},
    {"type": "Other", "url": "https://adams.k12.pa.us/jobs"}
  ]}
]}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	districts := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(districts, []byte(districtsJSON), 0o644))

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.yaml"), "--districts", districts}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestDistrictsCommand(t *testing.T) {
	out, err := execute(t, "districts")
	require.NoError(t, err)
	assert.Contains(t, out, "Lincoln SD")
	assert.Contains(t, out, "PowerSchool https://adams.powerschool.com/")
	assert.Contains(t, out, "2 district(s)")

	out, err = execute(t, "districts", "adams")
	require.NoError(t, err)
	assert.NotContains(t, out, "Lincoln SD")
	assert.Contains(t, out, "1 district(s)")
}

func TestScrapeCommand_UnknownDistrict(t *testing.T) {
	out, err := execute(t, "scrape", "-d", "nowhere", "--no-save")
	require.Error(t, err)
	assert.Contains(t, out, "No district found matching 'nowhere'")
	assert.Contains(t, out, "  - Lincoln SD\n")
	assert.Contains(t, out, "  - Adams Area SD\n")
}

func TestRunCommand_RejectsUnknownStore(t *testing.T) {
	_, err := execute(t, "run", "--store", "mongo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store")
}

func TestDistrictTable(t *testing.T) {
	out := districtTable([]config.District{{
		Name: "Easton Area SD", Type: config.PAEducator, URL: "https://www.paeducator.net/", FilterHint: "Easton Area",
	}})
	assert.Contains(t, out, "Easton Area SD")
	assert.True(t, strings.Contains(out, "PAEducator https://www.paeducator.net/"))
}

func TestVerdictTable(t *testing.T) {
	c := filter.NewClassifier(filter.DefaultKeywords())
	out := verdictTable(c, []scraper.Job{
		{Title: "High School History Teacher", District: "Example SD", URL: "http://x/postings/42"},
		{Title: "Elementary School Art Teacher", District: "Example SD", URL: "http://x/postings/43"},
	})
	assert.Contains(t, out, "✓ history")
	assert.Contains(t, out, "✓ high school")
	assert.Contains(t, out, "✗ elementary school")
}

func TestProbeCommand_Validation(t *testing.T) {
	_, err := execute(t, "probe", "--type", "Multiple", "--url", "https://x")
	assert.Error(t, err)

	_, err = execute(t, "probe", "--type", "Blackboard", "--url", "https://x")
	assert.ErrorIs(t, err, config.ErrInvalidDistrict)
}
