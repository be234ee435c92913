package stamper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rendis/esigncore/internal/port"
)

// Client implements port.Stamper against an HTTP stamping/flattening
// service: multipart POST {BaseURL}/stamp with the source PDF, a JSON map
// of field descriptors, and one part per signature image.
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

type fieldDescriptor struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

func (c *Client) Stamp(ctx context.Context, in port.StampRequest) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filePart, err := w.CreateFormFile("file", "document.pdf")
	if err != nil {
		return nil, fmt.Errorf("stamper: creating file part: %w", err)
	}
	if _, err := filePart.Write(in.PDF); err != nil {
		return nil, fmt.Errorf("stamper: writing file part: %w", err)
	}

	descriptors := make(map[string]fieldDescriptor, len(in.Fields))
	for _, f := range in.Fields {
		descriptors[f.Name] = fieldDescriptor{Value: f.Value, Type: string(f.Type)}
	}
	fieldsJSON, err := json.Marshal(descriptors)
	if err != nil {
		return nil, fmt.Errorf("stamper: marshaling fields: %w", err)
	}
	if err := w.WriteField("fields", string(fieldsJSON)); err != nil {
		return nil, fmt.Errorf("stamper: writing fields field: %w", err)
	}

	for name, png := range in.Images {
		imgPart, err := w.CreateFormFile(name, name+".png")
		if err != nil {
			return nil, fmt.Errorf("stamper: creating image part %q: %w", name, err)
		}
		if _, err := imgPart.Write(png); err != nil {
			return nil, fmt.Errorf("stamper: writing image part %q: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("stamper: closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stamp", &buf)
	if err != nil {
		return nil, fmt.Errorf("stamper: building request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stamper: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("stamper: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("stamper: non-2xx response (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
