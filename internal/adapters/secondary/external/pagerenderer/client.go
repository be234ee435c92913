package pagerenderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rendis/esigncore/internal/port"
)

// Client implements port.PageRenderer against an external page-rasterization
// service: POST application/pdf to {BaseURL}/render, decode a JSON list of
// base64-encoded page PNGs. Replaces local GhostScript rasterization, which
// is out of scope for this service.
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

type renderedPage struct {
	Number int    `json:"number"`
	PNG    string `json:"png"`
}

type response struct {
	Pages []renderedPage `json:"pages"`
}

func (c *Client) RenderPages(ctx context.Context, pdf []byte) ([]port.RenderedPageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(pdf))
	if err != nil {
		return nil, fmt.Errorf("pagerenderer: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagerenderer: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pagerenderer: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pagerenderer: non-2xx response (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("pagerenderer: decoding response: %w", err)
	}

	results := make([]port.RenderedPageResult, 0, len(decoded.Pages))
	for _, p := range decoded.Pages {
		png, err := base64.StdEncoding.DecodeString(p.PNG)
		if err != nil {
			return nil, fmt.Errorf("pagerenderer: decoding page %d png: %w", p.Number, err)
		}
		results = append(results, port.RenderedPageResult{Page: p.Number, PNG: png})
	}
	return results, nil
}
