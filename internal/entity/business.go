package entity

import (
	"time"

	"github.com/google/uuid"
)

// Business is the tenant root. Every User and BusinessConfig row belongs to
// exactly one Business.
type Business struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

func NewBusiness(name string) *Business {
	return &Business{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// BusinessConfigKey enumerates the recognized BusinessConfig.Key values.
type BusinessConfigKey string

const (
	BusinessConfigKeyWebhook       BusinessConfigKey = "webhook"
	BusinessConfigKeyEmailTemplate BusinessConfigKey = "email-template"
)

// BusinessConfig is a keyed JSON blob scoped to a Business. Webhook rows may
// repeat (one row per subscriber URL); email-template is at most one per
// business.
type BusinessConfig struct {
	ID         int64
	BusinessID uuid.UUID
	Key        BusinessConfigKey
	Values     map[string]any
	CreatedAt  time.Time
}
