package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
)

// Info is the §6 `GET /document/{id}/info` response shape, sourced from the
// describe-fields FileUsage's parsed geometry JSON.
type Info struct {
	Title  string
	Pages  []map[string]any
	Fields []map[string]any
}

// GetInfo returns the latest describe-fields payload. Returns
// entity.ErrFieldInfoNotReady (surfaced as 503 + Retry-After: 30) until
// locate_fields has produced one.
func (s *Service) GetInfo(ctx context.Context, documentID uuid.UUID) (*Info, error) {
	doc, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	fu, err := s.fileUsages.LatestOfType(ctx, documentID, entity.FileUsageDescribeFields)
	if err != nil {
		return nil, entity.ErrFieldInfoNotReady
	}
	if len(fu.Data) == 0 {
		return nil, entity.ErrFieldInfoNotReady
	}

	info := &Info{Title: doc.Title}
	if raw, ok := fu.Data["pages"]; ok {
		info.Pages = toMapSlice(raw)
	}
	if raw, ok := fu.Data["fields"]; ok {
		info.Fields = toMapSlice(raw)
	}
	return info, nil
}

func toMapSlice(raw any) []map[string]any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// GetPDF returns the newest stamped PDF bytes for documentID, falling back
// to the original upload if stamping hasn't completed yet.
func (s *Service) GetPDF(ctx context.Context, documentID uuid.UUID) ([]byte, error) {
	fu, err := s.fileUsages.LatestByTypes(ctx, documentID,
		entity.FileUsageEndstamp, entity.FileUsageUpdated, entity.FileUsageCreated)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, fu.FileID.String())
	if err != nil {
		return nil, fmt.Errorf("document: downloading pdf: %w", err)
	}
	return data, nil
}

// GetPage returns the cached PNG for one page of the latest stamped
// document (newest RenderedPage row wins).
func (s *Service) GetPage(ctx context.Context, documentID uuid.UUID, page int) ([]byte, error) {
	p, err := s.renderedPages.Latest(ctx, documentID, page)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, p.FileID.String())
	if err != nil {
		return nil, fmt.Errorf("document: downloading rendered page: %w", err)
	}
	return data, nil
}
