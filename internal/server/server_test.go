package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"school-job-scout/internal/report"
	"school-job-scout/internal/scraper"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type body struct {
	TotalJobs int           `json:"total_jobs"`
	NewJobs   int           `json:"new_jobs"`
	Jobs      []scraper.Job `json:"jobs"`
	Error     string        `json:"error"`
}

func get(t *testing.T, r http.Handler, path string) (int, body) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var b body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return w.Code, b
}

func writeResults(t *testing.T) string {
	t.Helper()
	jobs := []scraper.Job{
		{Title: "History Teacher", District: "Lincoln SD", URL: "https://l.org/1", Source: scraper.SourceAppliTrack},
		{Title: "Civics Teacher", District: "Adams SD", URL: "https://a.org/2", Source: scraper.SourceOther},
	}
	path := filepath.Join(t.TempDir(), "latest_results.json")
	require.NoError(t, report.WriteJSON(path, report.NewRunResults(jobs, jobs[1:], time.Now())))
	return path
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter("", nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestJobs(t *testing.T) {
	r := NewRouter(writeResults(t), nil)

	code, b := get(t, r, "/api/jobs")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, b.TotalJobs)
	assert.Equal(t, 1, b.NewJobs)

	code, b = get(t, r, "/api/jobs?district=lincoln")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, b.Jobs, 1)
	assert.Equal(t, "History Teacher", b.Jobs[0].Title)
}

func TestNewJobs(t *testing.T) {
	r := NewRouter(writeResults(t), nil)

	code, b := get(t, r, "/api/jobs/new")
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, b.Jobs, 1)
	assert.Equal(t, "Civics Teacher", b.Jobs[0].Title)

	_, b = get(t, r, "/api/jobs/new?district=lincoln")
	assert.Empty(t, b.Jobs)
}

func TestMissingAndCorruptResults(t *testing.T) {
	dir := t.TempDir()

	code, b := get(t, NewRouter(filepath.Join(dir, "none.json"), nil), "/api/jobs")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "no results yet", b.Error)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	code, _ = get(t, NewRouter(bad, nil), "/api/jobs/new")
	assert.Equal(t, http.StatusInternalServerError, code)
}
