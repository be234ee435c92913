package concat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Client implements port.Concat: multipart POST {BaseURL}/concat with two
// PDF parts "a" and "b", get back the merged application/pdf body.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) ConcatPDF(ctx context.Context, a, b []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writePart(w, "a", a); err != nil {
		return nil, err
	}
	if err := writePart(w, "b", b); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("concat: closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/concat", &buf)
	if err != nil {
		return nil, fmt.Errorf("concat: building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("concat: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("concat: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("concat: non-2xx response (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func writePart(w *multipart.Writer, name string, data []byte) error {
	part, err := w.CreateFormFile(name, name+".pdf")
	if err != nil {
		return fmt.Errorf("concat: creating part %q: %w", name, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("concat: writing part %q: %w", name, err)
	}
	return nil
}
