// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

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

// ErrNotFound is returned by writes that target a missing row.
var ErrNotFound = errors.New("store: not found")

// ConversationStore handles chat_sessions and chat_messages operations.
type ConversationStore struct {
	db *sql.DB
}

// NewConversationStore creates a new ConversationStore.
func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

const sessionColumns = `id, user_id, title, created_at, updated_at`

func scanSession(scanner interface{ Scan(...any) error }) (*models.ChatSession, error) {
	var s models.ChatSession
	if err := scanner.Scan(&s.ID, &s.UserID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the owner's sessions, most recently updated first.
func (s *ConversationStore) ListSessions(ctx context.Context, owner uuid.UUID, limit int) ([]models.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var items []models.ChatSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		items = append(items, *cs)
	}
	return items, rows.Err()
}

// CreateSession starts a session titled after its opening message.
func (s *ConversationStore) CreateSession(ctx context.Context, owner uuid.UUID, title string) (*models.ChatSession, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO chat_sessions (user_id, title)
		VALUES ($1, $2)
		RETURNING `+sessionColumns,
		owner, models.SessionTitle(title),
	)
	cs, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return cs, nil
}

// FindSession retrieves one of the owner's sessions. Returns nil if not found.
func (s *ConversationStore) FindSession(ctx context.Context, owner, id uuid.UUID) (*models.ChatSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = $1 AND user_id = $2`, id, owner)
	cs, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	return cs, nil
}

// DeleteSession removes the session and, through the foreign key, its turns.
func (s *ConversationStore) DeleteSession(ctx context.Context, owner, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	return nil
}

// TouchSession bumps the session's updated_at.
func (s *ConversationStore) TouchSession(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE chat_sessions SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("touch session %s: %w", id, ErrNotFound)
	}
	return nil
}

const turnColumns = `id, session_id, user_id, role, content, customization_data, created_at`

func scanTurn(scanner interface{ Scan(...any) error }) (*models.ChatTurn, error) {
	var (
		t   models.ChatTurn
		raw []byte
	)
	if err := scanner.Scan(&t.ID, &t.SessionID, &t.UserID, &t.Role, &t.Content, &raw, &t.CreatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		var p models.TurnPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode turn payload: %w", err)
		}
		t.Payload = &p
	}
	return &t, nil
}

// AppendTurn records a new turn. Turns are never updated afterwards.
func (s *ConversationStore) AppendTurn(ctx context.Context, t *models.ChatTurn) (*models.ChatTurn, error) {
	var payload any
	if t.Payload != nil {
		b, err := json.Marshal(t.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode turn payload: %w", err)
		}
		payload = b
	}
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO chat_messages (session_id, user_id, role, content, customization_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+turnColumns,
		t.SessionID, t.UserID, t.Role, t.Content, payload,
	)
	created, err := scanTurn(row)
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}
	return created, nil
}

// ListTurns returns the session's turns, oldest first.
func (s *ConversationStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]models.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+turnColumns+`
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	var items []models.ChatTurn
	for rows.Next() {
		t, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}
