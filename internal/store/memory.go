// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
)

// Memory is an in-process backend with the same method sets as the
// PostgreSQL stores. State is lost on restart.
type Memory struct {
	mu       sync.RWMutex
	last     time.Time
	rules    map[uuid.UUID]models.CustomizationRule
	sessions map[uuid.UUID]models.ChatSession
	turns    map[uuid.UUID][]models.ChatTurn
	settings map[uuid.UUID]models.UserSettings
}

// NewMemory returns an empty Memory backend.
func NewMemory() *Memory {
	return &Memory{
		rules:    make(map[uuid.UUID]models.CustomizationRule),
		sessions: make(map[uuid.UUID]models.ChatSession),
		turns:    make(map[uuid.UUID][]models.ChatTurn),
		settings: make(map[uuid.UUID]models.UserSettings),
	}
}

// now returns a strictly increasing timestamp so orderings by time are
// total. The caller holds m.mu.
func (m *Memory) now() time.Time {
	t := time.Now().UTC()
	if !t.After(m.last) {
		t = m.last.Add(time.Microsecond)
	}
	m.last = t
	return t
}

// List returns all of the owner's rules, newest first.
func (m *Memory) List(_ context.Context, owner uuid.UUID) ([]models.CustomizationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.CustomizationRule
	for _, r := range m.rules {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.CustomizationRule) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// FindByID returns one of the owner's rules, or nil.
func (m *Memory) FindByID(_ context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[id]
	if !ok || r.UserID != owner {
		return nil, nil
	}
	return &r, nil
}

// Create stores r as a new inactive rule.
func (m *Memory) Create(_ context.Context, r *models.CustomizationRule) (*models.CustomizationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := *r
	created.ID = uuid.New()
	created.Name = models.RuleName(r.Name)
	created.IsActive = false
	created.ActivatedAt = nil
	created.CreatedAt = m.now()
	created.UpdatedAt = created.CreatedAt
	m.rules[created.ID] = created
	return &created, nil
}

// SetActive flips the rule's active flag. Returns nil if the owner has no
// such rule.
func (m *Memory) SetActive(_ context.Context, owner, id uuid.UUID, active bool) (*models.CustomizationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rules[id]
	if !ok || r.UserID != owner {
		return nil, nil
	}
	r.IsActive = active
	r.UpdatedAt = m.now()
	if active {
		at := r.UpdatedAt
		r.ActivatedAt = &at
	}
	m.rules[id] = r
	return &r, nil
}

// ListSessions returns the owner's sessions, most recently updated first.
func (m *Memory) ListSessions(_ context.Context, owner uuid.UUID, limit int) ([]models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ChatSession
	for _, s := range m.sessions {
		if s.UserID == owner {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.ChatSession) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateSession starts a session titled after its opening message.
func (m *Memory) CreateSession(_ context.Context, owner uuid.UUID, title string) (*models.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := models.ChatSession{
		ID:        uuid.New(),
		UserID:    owner,
		Title:     models.SessionTitle(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.sessions[s.ID] = s
	return &s, nil
}

// FindSession returns one of the owner's sessions, or nil.
func (m *Memory) FindSession(_ context.Context, owner, id uuid.UUID) (*models.ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || s.UserID != owner {
		return nil, nil
	}
	return &s, nil
}

// DeleteSession removes the session and all of its turns.
func (m *Memory) DeleteSession(_ context.Context, owner, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || s.UserID != owner {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	delete(m.sessions, id)
	delete(m.turns, id)
	return nil
}

// TouchSession bumps the session's UpdatedAt.
func (m *Memory) TouchSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("touch session %s: %w", id, ErrNotFound)
	}
	s.UpdatedAt = m.now()
	m.sessions[id] = s
	return nil
}

// AppendTurn records a turn on an existing session.
func (m *Memory) AppendTurn(_ context.Context, t *models.ChatTurn) (*models.ChatTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[t.SessionID]; !ok {
		return nil, fmt.Errorf("append turn to session %s: %w", t.SessionID, ErrNotFound)
	}
	created := *t
	created.ID = uuid.New()
	created.CreatedAt = m.now()
	m.turns[t.SessionID] = append(m.turns[t.SessionID], created)
	return &created, nil
}

// ListTurns returns the session's turns, oldest first.
func (m *Memory) ListTurns(_ context.Context, sessionID uuid.UUID) ([]models.ChatTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.turns[sessionID]), nil
}

// Find returns the owner's settings, or nil.
func (m *Memory) Find(_ context.Context, owner uuid.UUID) (*models.UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[owner]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Upsert writes the feature flag and API key, keeping usage counters.
func (m *Memory) Upsert(_ context.Context, us *models.UserSettings) (*models.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s, ok := m.settings[us.UserID]
	if !ok {
		s = models.UserSettings{UserID: us.UserID, CreatedAt: now}
	}
	s.AIFeaturesEnabled = us.AIFeaturesEnabled
	s.APIKey = us.APIKey
	s.UpdatedAt = now
	m.settings[us.UserID] = s
	return &s, nil
}

// RecordUsage increments the owner's usage counter.
func (m *Memory) RecordUsage(_ context.Context, owner uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s, ok := m.settings[owner]
	if !ok {
		s = models.UserSettings{UserID: owner, CreatedAt: now}
	}
	s.UsageCount++
	s.LastUsedAt = &now
	s.UpdatedAt = now
	m.settings[owner] = s
	return nil
}
