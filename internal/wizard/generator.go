// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package wizard turns natural-language styling requests into stored,
// inactive customization rules, keeping a conversation history per session.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"pulsecrm/internal/ai"
	"pulsecrm/internal/apperr"
	"pulsecrm/internal/models"
	"pulsecrm/internal/style"
)

// RequestLimit caps a styling request, counted in characters.
const RequestLimit = 2000

// historyTurns is how many earlier turns of a session are sent as context.
const historyTurns = 10

// RuleCreator persists new rules.
type RuleCreator interface {
	Create(ctx context.Context, r *models.CustomizationRule) (*models.CustomizationRule, error)
}

// Conversations is the session history the generator reads and extends.
type Conversations interface {
	FindSession(ctx context.Context, owner, id uuid.UUID) (*models.ChatSession, error)
	ListTurns(ctx context.Context, sessionID uuid.UUID) ([]models.ChatTurn, error)
	AppendTurn(ctx context.Context, t *models.ChatTurn) (*models.ChatTurn, error)
	TouchSession(ctx context.Context, id uuid.UUID) error
}

// Settings gates AI use per owner and records usage.
type Settings interface {
	Find(ctx context.Context, owner uuid.UUID) (*models.UserSettings, error)
	RecordUsage(ctx context.Context, owner uuid.UUID) error
}

// Providers resolves the text-generation provider for a caller.
type Providers interface {
	Resolve(apiKey string) (ai.Provider, error)
	CheckPrompt(ctx context.Context, prompt string) (*ai.ModerationResult, error)
}

// Candidate is a generated, not yet applied rule.
type Candidate struct {
	ID            uuid.UUID           `json:"id"`
	Component     string              `json:"component"`
	Modifications style.Modifications `json:"modifications"`
	Description   string              `json:"description"`
	Preview       string              `json:"preview"`
	Degraded      bool                `json:"degraded"`

	Rule *models.CustomizationRule `json:"-"`
}

// Payload returns the candidate as attached to an assistant turn.
func (c *Candidate) Payload() *models.TurnPayload {
	return &models.TurnPayload{
		CustomizationID: c.ID,
		Component:       c.Component,
		Modifications:   c.Modifications,
		Description:     c.Description,
		Preview:         c.Preview,
	}
}

// Generator produces candidates from styling requests.
type Generator struct {
	rules     RuleCreator
	convos    Conversations
	settings  Settings
	providers Providers
}

// NewGenerator creates a Generator.
func NewGenerator(rules RuleCreator, convos Conversations, settings Settings, providers Providers) *Generator {
	return &Generator{rules: rules, convos: convos, settings: settings, providers: providers}
}

type generateInput struct {
	UserRequest string `json:"userRequest" validate:"required,max=2000"`
}

// Generate asks the provider for a rule matching request and stores it
// inactive. With a session id, the exchange is appended to that session.
func (g *Generator) Generate(ctx context.Context, owner uuid.UUID, request string, sessionID *uuid.UUID) (*Candidate, error) {
	request = strings.TrimSpace(request)
	if err := apperr.Validate(generateInput{UserRequest: request}); err != nil {
		return nil, err
	}

	var history []models.ChatTurn
	if sessionID != nil {
		session, err := g.convos.FindSession(ctx, owner, *sessionID)
		if err != nil {
			return nil, apperr.Persistence("find session", err)
		}
		if session == nil {
			return nil, fmt.Errorf("session %s: %w", *sessionID, apperr.ErrNotFound)
		}
		turns, err := g.convos.ListTurns(ctx, session.ID)
		if err != nil {
			return nil, apperr.Persistence("list turns", err)
		}
		if len(turns) > historyTurns {
			turns = turns[len(turns)-historyTurns:]
		}
		history = turns
	}

	provider, err := g.provider(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := g.moderate(ctx, request); err != nil {
		return nil, err
	}

	text, err := provider.Generate(ctx, buildRequest(history, request))
	if err != nil {
		slog.Error("ai generation failed", "owner", owner, "provider", provider.Name(), "error", err)
		return nil, &apperr.UpstreamError{Provider: provider.Name(), Err: err}
	}

	reply := ParseReply(text)
	if reply.Degraded() {
		slog.Warn("ai reply had no usable JSON", "owner", owner, "provider", provider.Name())
	}

	rule, err := g.rules.Create(ctx, &models.CustomizationRule{
		UserID:        owner,
		Name:          models.RuleName(request),
		Component:     reply.Component,
		Modifications: reply.Modifications,
	})
	if err != nil {
		return nil, apperr.Persistence("save customization", err)
	}

	candidate := &Candidate{
		ID:            rule.ID,
		Component:     rule.Component,
		Modifications: rule.Modifications,
		Description:   reply.Description,
		Preview:       reply.Preview,
		Degraded:      reply.Degraded(),
		Rule:          rule,
	}

	if err := g.settings.RecordUsage(ctx, owner); err != nil {
		slog.Warn("failed to record ai usage", "owner", owner, "error", err)
	}

	if sessionID != nil {
		g.record(ctx, owner, *sessionID, request, candidate)
	}

	slog.Info("customization generated", "owner", owner, "rule", rule.ID, "component", rule.Component, "stage", reply.Stage)
	return candidate, nil
}

// provider applies the owner's settings gate and resolves the provider.
func (g *Generator) provider(ctx context.Context, owner uuid.UUID) (ai.Provider, error) {
	settings, err := g.settings.Find(ctx, owner)
	if err != nil {
		return nil, apperr.Persistence("load settings", err)
	}
	if settings == nil || !settings.AIFeaturesEnabled {
		return nil, &apperr.NotConfiguredError{Reason: apperr.MsgAIDisabled}
	}

	p, err := g.providers.Resolve(settings.APIKey)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return nil, &apperr.NotConfiguredError{Reason: apperr.MsgNoAPIKey}
		}
		return nil, err
	}
	return p, nil
}

// moderate rejects flagged requests. A moderation outage does not block
// generation.
func (g *Generator) moderate(ctx context.Context, request string) error {
	res, err := g.providers.CheckPrompt(ctx, request)
	if err != nil {
		slog.Warn("moderation check failed, continuing", "error", err)
		return nil
	}
	if res != nil && !res.Safe {
		msg := "Your request was flagged by content moderation"
		if len(res.Categories) > 0 {
			msg += ": " + strings.Join(res.Categories, ", ")
		}
		return apperr.NewValidationError("userRequest", msg, nil)
	}
	return nil
}

// record appends the exchange to the session. The candidate is already
// stored, so history failures are logged and not returned.
func (g *Generator) record(ctx context.Context, owner, sessionID uuid.UUID, request string, c *Candidate) {
	turns := []*models.ChatTurn{
		{SessionID: sessionID, UserID: owner, Role: models.RoleUser, Content: request},
		{SessionID: sessionID, UserID: owner, Role: models.RoleAssistant,
			Content: "Customization created for " + c.Component, Payload: c.Payload()},
	}
	for _, t := range turns {
		if _, err := g.convos.AppendTurn(ctx, t); err != nil {
			slog.Warn("failed to append chat turn", "session", sessionID, "role", t.Role, "error", err)
			return
		}
	}
	if err := g.convos.TouchSession(ctx, sessionID); err != nil {
		slog.Warn("failed to touch chat session", "session", sessionID, "error", err)
	}
}
