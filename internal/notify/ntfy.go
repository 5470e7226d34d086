package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"school-job-scout/internal/scraper"
)

const (
	ntfyServer    = "https://ntfy.sh/"
	ntfyMaxListed = 5
)

// Ntfy pushes a short summary to an ntfy topic.
type Ntfy struct {
	endpoint string
	client   *http.Client
}

// NewNtfy accepts a bare topic name or a full topic URL on a self-hosted server.
func NewNtfy(topic string, timeout time.Duration) *Ntfy {
	topic = strings.TrimSpace(topic)
	endpoint := topic
	if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		endpoint = ntfyServer + topic
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Ntfy{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (n *Ntfy) Name() string { return ChannelNtfy }

func (n *Ntfy) Notify(ctx context.Context, jobs []scraper.Job, _ int) error {
	if len(jobs) == 0 {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(ntfyBody(jobs)))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", fmt.Sprintf("%d Social Studies Position%s Found!", len(jobs), plural(len(jobs))))
	req.Header.Set("Priority", "high")
	req.Header.Set("Tags", "mortar_board,briefcase")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func ntfyBody(jobs []scraper.Job) string {
	var b strings.Builder
	for i, job := range jobs {
		if i == ntfyMaxListed {
			fmt.Fprintf(&b, "\n... and %d more", len(jobs)-ntfyMaxListed)
			break
		}
		fmt.Fprintf(&b, "• %s (%s)\n", job.Title, job.District)
	}
	return b.String()
}
