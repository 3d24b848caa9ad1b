package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of sensitive actions.
type AuditLog struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID       `db:"entity_id" json:"entity_id"`
	Action     string          `db:"action" json:"action"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type AuditLogFilters struct {
	EntityType string
	EntityID   uuid.UUID
	UserID     uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}
