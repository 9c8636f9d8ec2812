package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
	"pulsecrm/internal/secret"
)

// SettingsStore handles user_settings operations. API keys are sealed
// with box before they are written and opened after they are read.
type SettingsStore struct {
	db  *sql.DB
	box *secret.Box
}

// NewSettingsStore creates a new SettingsStore.
func NewSettingsStore(db *sql.DB, box *secret.Box) *SettingsStore {
	return &SettingsStore{db: db, box: box}
}

const settingsColumns = `user_id, ai_features_enabled, openai_api_key, usage_count, last_used_at, created_at, updated_at`

func (s *SettingsStore) scan(scanner interface{ Scan(...any) error }) (*models.UserSettings, error) {
	var (
		us     models.UserSettings
		sealed string
	)
	err := scanner.Scan(&us.UserID, &us.AIFeaturesEnabled, &sealed, &us.UsageCount,
		&us.LastUsedAt, &us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		return nil, err
	}
	key, err := s.box.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("open api key: %w", err)
	}
	us.APIKey = key
	return &us, nil
}

// Find returns the owner's settings. Returns nil if none were saved.
func (s *SettingsStore) Find(ctx context.Context, owner uuid.UUID) (*models.UserSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, owner)
	us, err := s.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return us, nil
}

// Upsert writes the feature flag and API key, creating the row if needed.
// Usage counters are left untouched.
func (s *SettingsStore) Upsert(ctx context.Context, us *models.UserSettings) (*models.UserSettings, error) {
	sealed, err := s.box.Seal(us.APIKey)
	if err != nil {
		return nil, fmt.Errorf("seal api key: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO user_settings (user_id, ai_features_enabled, openai_api_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET ai_features_enabled = EXCLUDED.ai_features_enabled,
		    openai_api_key = EXCLUDED.openai_api_key,
		    updated_at = NOW()
		RETURNING `+settingsColumns,
		us.UserID, us.AIFeaturesEnabled, sealed,
	)
	saved, err := s.scan(row)
	if err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}
	return saved, nil
}

// RecordUsage increments the owner's usage counter and stamps last_used_at.
func (s *SettingsStore) RecordUsage(ctx context.Context, owner uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, usage_count, last_used_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET usage_count = user_settings.usage_count + 1,
		    last_used_at = NOW(),
		    updated_at = NOW()
	`, owner)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}
