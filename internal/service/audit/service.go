// Package audit implements C7: the merged, time-ordered view of file and
// field events, materialized as JSON or (via the external audit renderer)
// as a PDF.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/port"
)

func New(fileUsages port.FileUsageRepository, fieldUsages port.FieldUsageRepository, renderer port.AuditRenderer) *Service {
	return &Service{fileUsages: fileUsages, fieldUsages: fieldUsages, renderer: renderer}
}

// Service implements C7.
type Service struct {
	fileUsages  port.FileUsageRepository
	fieldUsages port.FieldUsageRepository
	renderer    port.AuditRenderer
}

// Merge builds the normalized, ascending-by-timestamp event stream for a
// document (§4.3 `audit(document)`, §4.7 mapping rules).
func (s *Service) Merge(ctx context.Context, documentID uuid.UUID) ([]entity.AuditEntry, error) {
	fileEvents, err := s.fileUsages.ListByDocument(ctx, documentID, entity.FileUsageDescribeFields)
	if err != nil {
		return nil, fmt.Errorf("audit: listing file usages: %w", err)
	}
	fieldEvents, usernames, err := s.fieldUsages.ListByDocumentJoinedUser(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("audit: listing field usages: %w", err)
	}

	entries := make([]entity.AuditEntry, 0, len(fileEvents)+len(fieldEvents))
	for _, fu := range fileEvents {
		entries = append(entries, fileUsageEntry(fu))
	}
	for _, fu := range fieldEvents {
		entries = append(entries, fieldUsageEntry(fu, usernames))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// fileUsageEntry applies the endstamp remap: a null file means the stamp
// attempt failed.
func fileUsageEntry(fu *entity.FileUsage) entity.AuditEntry {
	status := string(fu.Type)
	if fu.Type == entity.FileUsageEndstamp {
		if fu.FileID != nil {
			status = string(entity.AuditStatusStampSuccess)
		} else {
			status = string(entity.AuditStatusStampFailed)
		}
	}
	return entity.AuditEntry{Status: status, Timestamp: fu.Timestamp, Data: fu.Data}
}

// fieldUsageEntry stamps data.user with the signer's username when known.
func fieldUsageEntry(fu *entity.FieldUsage, usernames map[uuid.UUID]string) entity.AuditEntry {
	data := make(map[string]any, len(fu.Data)+1)
	for k, v := range fu.Data {
		data[k] = v
	}
	if name, ok := usernames[fu.FieldID]; ok {
		data["user"] = name
	}
	return entity.AuditEntry{Status: string(fu.Type), Timestamp: fu.Timestamp, Data: data}
}

// auditJSON is the wire shape of one entry: status, ISO-8601 timestamp,
// data object.
type auditJSON struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// MaterializeJSON renders the merged stream as the JSON array the HTTP
// surface serves for `GET /document/{id}/audit` when JSON is negotiated.
// descending reverses to newest-first, matching the HTTP surface's
// discretion to serialize descending (§4.7).
func (s *Service) MaterializeJSON(ctx context.Context, documentID uuid.UUID, descending bool) ([]byte, error) {
	entries, err := s.Merge(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if descending {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}

	out := make([]auditJSON, len(entries))
	for i, e := range entries {
		out[i] = auditJSON{
			Status:    e.Status,
			Timestamp: e.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			Data:      e.Data,
		}
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("audit: encoding json: %w", err)
	}
	return encoded, nil
}

// MaterializePDF renders the merged stream (ascending) to a PDF page via
// the external audit renderer.
func (s *Service) MaterializePDF(ctx context.Context, documentID uuid.UUID) ([]byte, error) {
	encoded, err := s.MaterializeJSON(ctx, documentID, false)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderAuditLog(ctx, encoded)
	if err != nil {
		return nil, fmt.Errorf("audit: rendering pdf: %w", err)
	}
	return pdf, nil
}
