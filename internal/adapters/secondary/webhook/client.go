package webhook

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Client implements port.WebhookSender. Non-2xx responses, connection
// failures, and malformed URLs are logged and swallowed here: the task
// calling Send decides whether the overall job should be retried, but a
// single subscriber's misconfiguration must never fail the other
// subscribers in the same fan-out.
type Client struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

func (c *Client) Send(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		slog.ErrorContext(ctx, "webhook: malformed url, skipping", slog.String("url", url), slog.String("error", err.Error()))
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.ErrorContext(ctx, "webhook: delivery failed, skipping", slog.String("url", url), slog.String("error", err.Error()))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.ErrorContext(ctx, "webhook: non-2xx response",
			slog.String("url", url), slog.Int("status", resp.StatusCode))
	}
	return nil
}
