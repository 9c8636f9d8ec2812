// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements persistence for customization rules, wizard
// conversations and user settings. Every query is scoped by owner. The
// PostgreSQL stores and the in-memory Memory backend expose the same
// method sets.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
)

// CustomizationStore handles ui_customizations database operations.
type CustomizationStore struct {
	db *sql.DB
}

// NewCustomizationStore creates a new CustomizationStore.
func NewCustomizationStore(db *sql.DB) *CustomizationStore {
	return &CustomizationStore{db: db}
}

// ruleColumns lists the columns selected in customization queries.
const ruleColumns = `id, user_id, customization_name, component_name, modifications,
	is_active, activated_at, created_at, updated_at`

// scanRule scans a customization row from the result set.
func scanRule(scanner interface{ Scan(...any) error }) (*models.CustomizationRule, error) {
	var (
		r   models.CustomizationRule
		raw []byte
	)
	err := scanner.Scan(&r.ID, &r.UserID, &r.Name, &r.Component, &raw,
		&r.IsActive, &r.ActivatedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &r.Modifications); err != nil {
		return nil, fmt.Errorf("decode modifications: %w", err)
	}
	return &r, nil
}

// List returns all of the owner's rules ordered by creation date descending.
func (s *CustomizationStore) List(ctx context.Context, owner uuid.UUID) ([]models.CustomizationRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ruleColumns+`
		FROM ui_customizations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, fmt.Errorf("list customizations: %w", err)
	}
	defer rows.Close()

	var items []models.CustomizationRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customization: %w", err)
		}
		items = append(items, *r)
	}
	return items, rows.Err()
}

// FindByID retrieves one of the owner's rules. Returns nil if not found.
func (s *CustomizationStore) FindByID(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM ui_customizations WHERE id = $1 AND user_id = $2`, id, owner)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customization by id: %w", err)
	}
	return r, nil
}

// Create inserts a new rule and returns it with the generated ID. Rules are
// always created inactive.
func (s *CustomizationStore) Create(ctx context.Context, r *models.CustomizationRule) (*models.CustomizationRule, error) {
	mods, err := json.Marshal(r.Modifications)
	if err != nil {
		return nil, fmt.Errorf("encode modifications: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO ui_customizations (user_id, customization_name, component_name, modifications)
		VALUES ($1, $2, $3, $4)
		RETURNING `+ruleColumns,
		r.UserID, models.RuleName(r.Name), r.Component, mods,
	)
	created, err := scanRule(row)
	if err != nil {
		return nil, fmt.Errorf("create customization: %w", err)
	}
	return created, nil
}

// SetActive changes only the rule's active flag. Activation stamps
// activated_at so active rules can be merged in the order they were
// applied. Returns nil if the rule does not exist for the owner.
func (s *CustomizationStore) SetActive(ctx context.Context, owner, id uuid.UUID, active bool) (*models.CustomizationRule, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE ui_customizations
		SET is_active = $3,
		    activated_at = CASE WHEN $3 THEN NOW() ELSE activated_at END,
		    updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+ruleColumns,
		id, owner, active,
	)
	r, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("set customization active: %w", err)
	}
	return r, nil
}
