package browser

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"name": "sid", "value": "abc", "domain": ".applitrack.com", "path": "", "httpOnly": true, "sameSite": "Lax"},
	  {"name": "pref", "value": "1", "domain": "paeducator.net", "path": "/app", "expires": 1767225600, "secure": true}
	]`), 0o644))

	cookies, err := LoadCookies(path)
	require.NoError(t, err)
	require.Len(t, cookies, 2)

	first := cookies[0].ToPlaywright()
	assert.Equal(t, "sid", first.Name)
	assert.Equal(t, "/", *first.Path)
	assert.True(t, *first.HttpOnly)
	assert.Equal(t, playwright.SameSiteAttributeLax, first.SameSite)
	assert.Nil(t, first.Expires)

	second := cookies[1].ToPlaywright()
	assert.Equal(t, "/app", *second.Path)
	assert.Equal(t, float64(1767225600), *second.Expires)
	assert.True(t, *second.Secure)
	assert.Nil(t, second.SameSite)
}

func TestLoadCookies_Errors(t *testing.T) {
	_, err := LoadCookies(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = LoadCookies(path)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	r, err := Open(context.Background(), KindNone, Options{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, r)

	_, err = Open(context.Background(), "firefox", Options{}, nil)
	assert.Error(t, err)
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleep(context.Background(), time.Millisecond))
}

// integration: needs installed playwright browsers
func TestPlaywright_Render(t *testing.T) {
	if testing.Short() || os.Getenv("SCOUT_BROWSER_TESTS") == "" {
		t.Skip("set SCOUT_BROWSER_TESTS to run browser tests")
	}
	pm, err := NewPlaywright(Options{Headless: true, Timeout: 30 * time.Second, ScreenshotDir: t.TempDir()}, nil)
	require.NoError(t, err)
	defer pm.Close()

	page, err := pm.Render(context.Background(), "data:text/html,<body><a href='/job/1'>History Teacher</a></body>", 0)
	require.NoError(t, err)
	assert.Contains(t, page.Text, "History Teacher")
}
