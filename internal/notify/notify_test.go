package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"school-job-scout/internal/config"
	"school-job-scout/internal/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJobs(n int) []scraper.Job {
	jobs := make([]scraper.Job, n)
	for i := range jobs {
		jobs[i] = scraper.Job{
			Title:    "History Teacher " + string(rune('A'+i)),
			District: "Lincoln SD",
			URL:      "https://l.org/" + string(rune('a'+i)),
			Source:   scraper.SourceAppliTrack,
		}
	}
	return jobs
}

func TestNtfy_Notify(t *testing.T) {
	var (
		headers http.Header
		body    string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	}))
	defer srv.Close()

	n := NewNtfy(srv.URL+"/scout", time.Second)
	require.NoError(t, n.Notify(context.Background(), sampleJobs(7), 7))

	assert.Equal(t, "7 Social Studies Positions Found!", headers.Get("Title"))
	assert.Equal(t, "high", headers.Get("Priority"))
	assert.Equal(t, "mortar_board,briefcase", headers.Get("Tags"))
	assert.Equal(t, 5, strings.Count(body, "• "))
	assert.Contains(t, body, "• History Teacher A (Lincoln SD)\n")
	assert.True(t, strings.HasSuffix(body, "... and 2 more"))
}

func TestNtfy_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic limit", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewNtfy(srv.URL+"/scout", time.Second).Notify(context.Background(), sampleJobs(1), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.NoError(t, NewNtfy(srv.URL, time.Second).Notify(context.Background(), nil, 0), "nothing to send")
}

func TestNewNtfy_Endpoint(t *testing.T) {
	assert.Equal(t, "https://ntfy.sh/scout", NewNtfy(" scout ", 0).endpoint)
	assert.Equal(t, "https://push.example.org/scout", NewNtfy("https://push.example.org/scout", 0).endpoint)
}

func newTestEmail(sent *[]byte) *Email {
	e := NewEmail(config.EmailConfig{From: "me@example.org", To: "a@example.org, b@example.org", Password: "x"})
	e.now = func() time.Time { return time.Date(2025, 9, 1, 7, 0, 0, 0, time.UTC) }
	e.deliver = func(_ context.Context, msg []byte) error {
		*sent = msg
		return nil
	}
	return e
}

func TestEmail_Notify(t *testing.T) {
	var sent []byte
	e := newTestEmail(&sent)

	jobs := sampleJobs(2)
	jobs[0].Title = "History & <Civics> Teacher"
	require.NoError(t, e.Notify(context.Background(), jobs, 9))

	msg := string(sent)
	assert.Contains(t, msg, "To: a@example.org, b@example.org\r\n")
	assert.Contains(t, msg, "Subject: =?utf-8?q?")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, msg, "Found 2 new social studies teaching positions:")
	assert.Contains(t, msg, "• History & <Civics> Teacher")
	assert.Contains(t, msg, "<strong>History &amp; &lt;Civics&gt; Teacher</strong>")
	assert.Contains(t, msg, `<a href="https://l.org/b">View Posting</a>`)
}

func TestEmail_SendStatus(t *testing.T) {
	var sent []byte
	e := newTestEmail(&sent)

	require.NoError(t, e.SendStatus(context.Background(), 4, nil))
	assert.Contains(t, string(sent), "none of them new")

	require.NoError(t, e.SendStatus(context.Background(), 4, sampleJobs(1)))
	assert.Contains(t, string(sent), "4 matching positions are listed, 1 new:")
	assert.Contains(t, string(sent), "History Teacher A")
}

func TestEmail_DeliveryError(t *testing.T) {
	e := NewEmail(config.EmailConfig{From: "me@example.org", To: "a@example.org", Password: "x"})
	e.deliver = func(context.Context, []byte) error { return errors.New("535 bad credentials") }

	err := e.Notify(context.Background(), sampleJobs(1), 1)
	assert.ErrorContains(t, err, "535")
	assert.Equal(t, "smtp.gmail.com", e.host)
	assert.Equal(t, 465, e.port)
}

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	fail map[string]bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m := c.(tgbotapi.MessageConfig)
	f.sent = append(f.sent, m)
	for title := range f.fail {
		if strings.Contains(m.Text, title) {
			return tgbotapi.Message{}, errors.New("bad request")
		}
	}
	return tgbotapi.Message{}, nil
}

func TestTelegram_Notify(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, 42, nil)
	tg.pause = 0

	require.NoError(t, tg.Notify(context.Background(), sampleJobs(2), 5))

	require.Len(t, bot.sent, 3)
	first := bot.sent[0]
	assert.Equal(t, int64(42), first.ChatID)
	assert.Equal(t, "MarkdownV2", first.ParseMode)
	assert.Contains(t, first.Text, "*History Teacher A*")
	kb := first.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "🔗 View Posting", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "https://l.org/a", *kb.InlineKeyboard[0][0].URL)
	assert.Contains(t, bot.sent[2].Text, "Found 2 new of 5 matching jobs, sent 2.")
}

func TestTelegram_PartialFailure(t *testing.T) {
	bot := &fakeBot{fail: map[string]bool{"History Teacher A": true}}
	tg := newTelegram(bot, 1, nil)
	tg.pause = 0

	err := tg.Notify(context.Background(), sampleJobs(2), 2)
	assert.ErrorContains(t, err, "sent 1 of 2")
	assert.Len(t, bot.sent, 3)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `Grade 7\-8 \(Civics\)\.`, escapeMarkdown("Grade 7-8 (Civics)."))
	assert.Equal(t, `a\\b`, escapeMarkdown(`a\b`))
}

type stubNotifier struct {
	name  string
	err   error
	calls int
}

func (s *stubNotifier) Name() string { return s.name }

func (s *stubNotifier) Notify(context.Context, []scraper.Job, int) error {
	s.calls++
	return s.err
}

func TestMulti(t *testing.T) {
	ok := &stubNotifier{name: "ok"}
	bad := &stubNotifier{name: "bad", err: errors.New("down")}
	m := NewMulti(nil, bad, ok)

	err := m.Notify(context.Background(), sampleJobs(1), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: down")
	assert.Equal(t, 1, ok.calls, "a failing channel does not stop the rest")

	results := m.Send(context.Background(), sampleJobs(1), 1)
	assert.Equal(t, []Result{{Channel: "bad", Err: bad.err}, {Channel: "ok"}}, results)

	assert.NoError(t, m.Notify(context.Background(), nil, 0))
	assert.Equal(t, 2, ok.calls)
}

func TestFromConfig(t *testing.T) {
	m, err := FromConfig(&config.Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	m, err = FromConfig(&config.Config{
		NtfyTopic: "scout",
		Email:     config.EmailConfig{From: "a@x.org", To: "b@x.org", Password: "p"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
}

func TestFromConfig_Skip(t *testing.T) {
	m, err := FromConfig(&config.Config{
		NtfyTopic: "scout",
		Email:     config.EmailConfig{From: "a@x.org", To: "b@x.org", Password: "p"},
	}, nil, ChannelEmail)
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, ChannelNtfy, m.notifiers[0].Name())
}
