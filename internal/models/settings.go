package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSettings holds a user's AI preferences. APIKey is the plaintext
// key; it is sealed by the store before it reaches the database and never
// serialized to clients.
type UserSettings struct {
	UserID            uuid.UUID  `json:"user_id"`
	AIFeaturesEnabled bool       `json:"ai_features_enabled"`
	APIKey            string     `json:"-"`
	UsageCount        int        `json:"usage_count"`
	LastUsedAt        *time.Time `json:"last_used_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// HasAPIKey reports whether the user supplied their own provider key.
func (s *UserSettings) HasAPIKey() bool {
	return s != nil && s.APIKey != ""
}
