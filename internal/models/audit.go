package models

import (
	"encoding/json"
	"time"
)

// AuditLog records a mutation intent performed through the dashboard.
type AuditLog struct {
	ID        string          `db:"id" json:"id"`
	Actor     *string         `db:"actor" json:"actor,omitempty"`
	Action    string          `db:"action" json:"action"`
	Entity    string          `db:"entity" json:"entity"`
	Detail    json.RawMessage `db:"detail" json:"detail,omitempty"`
	IPAddress string          `db:"ip_address" json:"ip_address"`
	UserAgent string          `db:"user_agent" json:"user_agent"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
