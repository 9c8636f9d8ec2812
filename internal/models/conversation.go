// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"pulsecrm/internal/style"
)

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// ChatSession is a wizard conversation. Deleting a session deletes its
// turns.
type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionTitleLimit caps a session title derived from its first message.
const SessionTitleLimit = 50

// SessionTitle derives a session title from the message that opened it.
func SessionTitle(message string) string {
	return truncateRunes(message, SessionTitleLimit)
}

// ChatTurn is one immutable message in a session. Assistant turns that
// produced a candidate carry it in Payload.
type ChatTurn struct {
	ID        uuid.UUID    `json:"id"`
	SessionID uuid.UUID    `json:"session_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Role      TurnRole     `json:"role"`
	Content   string       `json:"content"`
	Payload   *TurnPayload `json:"customization_data,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// TurnPayload is the candidate attached to an assistant turn.
type TurnPayload struct {
	CustomizationID uuid.UUID           `json:"customization_id"`
	Component       string              `json:"component"`
	Modifications   style.Modifications `json:"modifications"`
	Description     string              `json:"description"`
	Preview         string              `json:"preview"`
}
