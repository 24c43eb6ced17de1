// Package models contains the data models read and written by the gateway.
package models

import (
	"time"

	"github.com/google/uuid"
)

// APIToken is an external API credential. The raw secret is shown once at
// creation and never stored; only its SHA-256 hex digest is persisted.
type APIToken struct {
	ID         uuid.UUID  `db:"id"           json:"id"`
	Name       string     `db:"name"         json:"name"`
	TokenHash  string     `db:"token_hash"   json:"-"`
	Scopes     Scope      `db:"scopes"       json:"scopes"`
	IsActive   bool       `db:"is_active"    json:"is_active"`
	ExpiresAt  *time.Time `db:"expires_at"   json:"expires_at,omitempty"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at"   json:"created_at"`
}

// UsableAt reports whether the token may authenticate a request at now.
func (t *APIToken) UsableAt(now time.Time) bool {
	if !t.IsActive {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now)
}
