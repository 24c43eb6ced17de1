package models

import (
	"time"

	"github.com/google/uuid"
)

// CallLog records one inbound gateway call made with a resolved token.
// Entries are append-only.
type CallLog struct {
	ID             uuid.UUID `db:"id"               json:"id"`
	TokenID        uuid.UUID `db:"token_id"         json:"token_id"`
	Endpoint       string    `db:"endpoint"         json:"endpoint"`
	Method         string    `db:"method"           json:"method"`
	StatusCode     int       `db:"status_code"      json:"status_code"`
	ResponseTimeMS int64     `db:"response_time_ms" json:"response_time_ms"`
	IPAddress      string    `db:"ip_address"       json:"ip_address"`
	UserAgent      string    `db:"user_agent"       json:"user_agent"`
	CreatedAt      time.Time `db:"created_at"       json:"created_at"`
}
