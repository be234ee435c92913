package mailgun

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rendis/esigncore/internal/port"
)

// Client implements port.EmailProvider with a Mailgun-style MIME submission:
// POST https://api.mailgun.net/v3/{domain}/messages.mime with HTTP basic
// auth "api:<apiKey>" and the raw MIME message as a multipart form file.
type Client struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Configured always returns true for the client itself; the caller decides
// per-business whether domain/apiKey are present before invoking Send, since
// that configuration is tenant-scoped (BusinessConfig), not process-global.
func (c *Client) Configured() bool {
	return true
}

func (c *Client) Send(ctx context.Context, domain, apiKey string, msg port.EmailMessage) error {
	mime := buildMIME(msg)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("message", "message.mime")
	if err != nil {
		return fmt.Errorf("mailgun: creating mime part: %w", err)
	}
	if _, err := part.Write(mime); err != nil {
		return fmt.Errorf("mailgun: writing mime part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailgun: closing multipart writer: %w", err)
	}

	url := fmt.Sprintf("https://api.mailgun.net/v3/%s/messages.mime", domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("mailgun: building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth("api", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mailgun: non-2xx response (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

func buildMIME(msg port.EmailMessage) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.Body)
	return b.Bytes()
}
