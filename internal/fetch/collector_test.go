package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTML(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.UserAgent()
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/postings/42">High School History Teacher</a>`))
	}))
	defer srv.Close()

	c := NewCollector(Options{UserAgent: "scout-test", Timeout: 5 * time.Second}, nil)

	body, err := c.FetchHTML(context.Background(), srv.URL+"/jobs")
	require.NoError(t, err)
	assert.Contains(t, body, "High School History Teacher")
	assert.Equal(t, "scout-test", gotUA)

	// same URL again is allowed
	_, err = c.FetchHTML(context.Background(), srv.URL+"/jobs")
	require.NoError(t, err)

	_, err = c.FetchHTML(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestFetchHTML_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCollector(Options{}, nil).FetchHTML(ctx, "http://127.0.0.1:1/")

	assert.ErrorIs(t, err, context.Canceled)
}
