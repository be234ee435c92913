package fieldlocator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rendis/esigncore/internal/port"
)

// Client implements port.FieldLocator against an HTTP field-extraction
// service: POST application/pdf to {BaseURL}/locate-fields, decode the
// geometry response.
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

type pageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type locatedField struct {
	Name string `json:"name"`
	Rect rect   `json:"rect"`
	Page int    `json:"page"`
}

type response struct {
	Pages  []pageSize     `json:"pages"`
	Fields []locatedField `json:"fields"`
}

func (c *Client) LocateFields(ctx context.Context, pdf []byte) (port.LocateFieldsResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/locate-fields", bytes.NewReader(pdf))
	if err != nil {
		return port.LocateFieldsResult{}, fmt.Errorf("fieldlocator: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return port.LocateFieldsResult{}, fmt.Errorf("fieldlocator: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return port.LocateFieldsResult{}, fmt.Errorf("fieldlocator: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return port.LocateFieldsResult{}, fmt.Errorf("fieldlocator: non-2xx response (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return port.LocateFieldsResult{}, fmt.Errorf("fieldlocator: decoding response: %w", err)
	}

	result := port.LocateFieldsResult{
		Pages:  make([]port.PageSize, 0, len(decoded.Pages)),
		Fields: make([]port.LocatedField, 0, len(decoded.Fields)),
	}
	for _, p := range decoded.Pages {
		result.Pages = append(result.Pages, port.PageSize{Width: p.Width, Height: p.Height})
	}
	for _, f := range decoded.Fields {
		result.Fields = append(result.Fields, port.LocatedField{
			Name: f.Name,
			Rect: port.FieldRect{X: f.Rect.X, Y: f.Rect.Y, W: f.Rect.W, H: f.Rect.H},
			Page: f.Page,
		})
	}
	return result, nil
}
