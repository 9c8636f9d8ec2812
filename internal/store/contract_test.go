// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
	"pulsecrm/internal/style"
)

// The same behaviour is required of the PostgreSQL stores and Memory;
// these helpers run it against either.

type ruleBackend interface {
	List(ctx context.Context, owner uuid.UUID) ([]models.CustomizationRule, error)
	FindByID(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error)
	Create(ctx context.Context, r *models.CustomizationRule) (*models.CustomizationRule, error)
	SetActive(ctx context.Context, owner, id uuid.UUID, active bool) (*models.CustomizationRule, error)
}

type conversationBackend interface {
	ListSessions(ctx context.Context, owner uuid.UUID, limit int) ([]models.ChatSession, error)
	CreateSession(ctx context.Context, owner uuid.UUID, title string) (*models.ChatSession, error)
	FindSession(ctx context.Context, owner, id uuid.UUID) (*models.ChatSession, error)
	DeleteSession(ctx context.Context, owner, id uuid.UUID) error
	TouchSession(ctx context.Context, id uuid.UUID) error
	AppendTurn(ctx context.Context, t *models.ChatTurn) (*models.ChatTurn, error)
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]models.ChatTurn, error)
}

type settingsBackend interface {
	Find(ctx context.Context, owner uuid.UUID) (*models.UserSettings, error)
	Upsert(ctx context.Context, us *models.UserSettings) (*models.UserSettings, error)
	RecordUsage(ctx context.Context, owner uuid.UUID) error
}

func testRuleContract(t *testing.T, s ruleBackend, owner uuid.UUID) {
	ctx := context.Background()

	created, err := s.Create(ctx, &models.CustomizationRule{
		UserID:    owner,
		Name:      strings.Repeat("n", 150),
		Component: "deal-card",
		Modifications: style.Modifications{
			Colors: &style.Palette{Background: "#0f0", Custom: map[string]string{"glow": "lime"}},
			Theme:  style.ThemeNeon,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.IsActive {
		t.Error("new rules should not be active")
	}
	if len(created.Name) != models.RuleNameLimit {
		t.Errorf("name length: got %d, want %d", len(created.Name), models.RuleNameLimit)
	}

	found, err := s.FindByID(ctx, owner, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected rule, got nil")
	}
	if found.Modifications.Colors.Custom["glow"] != "lime" {
		t.Errorf("custom colour lost: %+v", found.Modifications.Colors)
	}

	// Another owner cannot see the rule.
	if other, _ := s.FindByID(ctx, uuid.New(), created.ID); other != nil {
		t.Error("rule visible to a different owner")
	}

	activated, err := s.SetActive(ctx, owner, created.ID, true)
	if err != nil {
		t.Fatalf("SetActive(true): %v", err)
	}
	if !activated.IsActive || activated.ActivatedAt == nil {
		t.Errorf("activation not recorded: %+v", activated)
	}
	if activated.Component != "deal-card" || activated.Modifications.Theme != style.ThemeNeon {
		t.Error("SetActive changed more than the active flag")
	}

	deactivated, err := s.SetActive(ctx, owner, created.ID, false)
	if err != nil {
		t.Fatalf("SetActive(false): %v", err)
	}
	if deactivated.IsActive {
		t.Error("rule still active after deactivation")
	}

	missing, err := s.SetActive(ctx, owner, uuid.New(), true)
	if err != nil || missing != nil {
		t.Errorf("SetActive on missing rule: got %v, %v", missing, err)
	}

	second, err := s.Create(ctx, &models.CustomizationRule{UserID: owner, Name: "second", Component: "sidebar"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	list, err := s.List(ctx, owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List: got %d rules, want 2", len(list))
	}
	if list[0].ID != second.ID {
		t.Error("List should return newest first")
	}
}

func testConversationContract(t *testing.T, s conversationBackend, owner uuid.UUID) {
	ctx := context.Background()

	first, err := s.CreateSession(ctx, owner, strings.Repeat("t", 80))
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if len(first.Title) != models.SessionTitleLimit {
		t.Errorf("title length: got %d, want %d", len(first.Title), models.SessionTitleLimit)
	}
	second, err := s.CreateSession(ctx, owner, "second")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ruleID := uuid.New()
	if _, err := s.AppendTurn(ctx, &models.ChatTurn{SessionID: first.ID, UserID: owner, Role: models.RoleUser, Content: "make it blue"}); err != nil {
		t.Fatalf("AppendTurn user: %v", err)
	}
	if _, err := s.AppendTurn(ctx, &models.ChatTurn{
		SessionID: first.ID, UserID: owner, Role: models.RoleAssistant, Content: "Customization created for deal-card",
		Payload: &models.TurnPayload{CustomizationID: ruleID, Component: "deal-card", Description: "blue"},
	}); err != nil {
		t.Fatalf("AppendTurn assistant: %v", err)
	}
	if err := s.TouchSession(ctx, first.ID); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}

	turns, err := s.ListTurns(ctx, first.ID)
	if err != nil {
		t.Fatalf("ListTurns: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("ListTurns: got %d, want 2", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[1].Role != models.RoleAssistant {
		t.Errorf("turns out of order: %s, %s", turns[0].Role, turns[1].Role)
	}
	if turns[0].Payload != nil {
		t.Error("user turn should carry no payload")
	}
	if turns[1].Payload == nil || turns[1].Payload.CustomizationID != ruleID {
		t.Errorf("assistant payload lost: %+v", turns[1].Payload)
	}

	sessions, err := s.ListSessions(ctx, owner, 20)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != first.ID {
		t.Errorf("ListSessions should put the touched session first, got %+v", sessions)
	}
	if limited, _ := s.ListSessions(ctx, owner, 1); len(limited) != 1 {
		t.Errorf("ListSessions limit: got %d, want 1", len(limited))
	}

	if other, _ := s.FindSession(ctx, uuid.New(), first.ID); other != nil {
		t.Error("session visible to a different owner")
	}
	if err := s.DeleteSession(ctx, uuid.New(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSession by another owner: got %v, want ErrNotFound", err)
	}

	if err := s.DeleteSession(ctx, owner, first.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if found, _ := s.FindSession(ctx, owner, first.ID); found != nil {
		t.Error("session still present after delete")
	}
	if turns, _ := s.ListTurns(ctx, first.ID); len(turns) != 0 {
		t.Errorf("turns survived session delete: %d", len(turns))
	}
	if found, _ := s.FindSession(ctx, owner, second.ID); found == nil {
		t.Error("unrelated session deleted")
	}
	if err := s.TouchSession(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("TouchSession on deleted session: got %v, want ErrNotFound", err)
	}
}

func testSettingsContract(t *testing.T, s settingsBackend, owner, fresh uuid.UUID) {
	ctx := context.Background()

	if found, err := s.Find(ctx, owner); err != nil || found != nil {
		t.Fatalf("Find before save: got %v, %v", found, err)
	}

	saved, err := s.Upsert(ctx, &models.UserSettings{UserID: owner, AIFeaturesEnabled: true, APIKey: "sk-abc"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !saved.AIFeaturesEnabled || saved.APIKey != "sk-abc" {
		t.Errorf("Upsert returned %+v", saved)
	}

	if err := s.RecordUsage(ctx, owner); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := s.RecordUsage(ctx, owner); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	// Saving settings again keeps usage counters.
	if _, err := s.Upsert(ctx, &models.UserSettings{UserID: owner, AIFeaturesEnabled: false, APIKey: "sk-abc"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	found, err := s.Find(ctx, owner)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found.UsageCount != 2 || found.LastUsedAt == nil {
		t.Errorf("usage: got count %d, last used %v", found.UsageCount, found.LastUsedAt)
	}
	if found.AIFeaturesEnabled {
		t.Error("feature flag not updated")
	}
	if found.APIKey != "sk-abc" {
		t.Errorf("api key: got %q", found.APIKey)
	}

	// Usage can be recorded before any settings exist.
	if err := s.RecordUsage(ctx, fresh); err != nil {
		t.Fatalf("RecordUsage fresh: %v", err)
	}
	if found, _ := s.Find(ctx, fresh); found == nil || found.UsageCount != 1 || found.AIFeaturesEnabled {
		t.Errorf("fresh usage row: %+v", found)
	}
}
