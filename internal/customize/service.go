// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package customize

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"pulsecrm/internal/apperr"
	"pulsecrm/internal/models"
)

// RuleStore is the persistence the service needs for customization rules.
type RuleStore interface {
	RuleLister
	FindByID(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error)
	SetActive(ctx context.Context, owner, id uuid.UUID, active bool) (*models.CustomizationRule, error)
}

// Service applies, rolls back and previews rules for any owner. Mutations
// for one owner are serialized so each owner's stylesheet has one writer.
type Service struct {
	rules   RuleStore
	surface Surface

	mu       sync.Mutex
	locks    map[uuid.UUID]*sync.Mutex
	previews map[uuid.UUID]*Preview
}

// NewService creates a Service over the given store and surface.
func NewService(rules RuleStore, surface Surface) *Service {
	return &Service{
		rules:    rules,
		surface:  surface,
		locks:    make(map[uuid.UUID]*sync.Mutex),
		previews: make(map[uuid.UUID]*Preview),
	}
}

func (s *Service) lock(owner uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		s.locks[owner] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) preview(owner uuid.UUID) *Preview {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.previews[owner]
	if !ok {
		p = NewPreview(s.surface, owner)
		s.previews[owner] = p
	}
	return p
}

// List returns every rule the owner has, newest first.
func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]models.CustomizationRule, error) {
	rules, err := s.rules.List(ctx, owner)
	if err != nil {
		return nil, apperr.Persistence("list rules", err)
	}
	return rules, nil
}

// Get returns one of the owner's rules.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error) {
	rule, err := s.rules.FindByID(ctx, owner, id)
	if err != nil {
		return nil, apperr.Persistence("find rule", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s: %w", id, apperr.ErrNotFound)
	}
	return rule, nil
}

// Apply marks the rule active and republishes the owner's stylesheet. The
// stylesheet is only rewritten once the store has accepted the change.
func (s *Service) Apply(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error) {
	defer s.lock(owner)()

	reg := NewRegistry(owner, s.rules, s.surface)
	if err := reg.Load(ctx); err != nil {
		return nil, apperr.Persistence("load rules", err)
	}

	rule, err := s.rules.SetActive(ctx, owner, id, true)
	if err != nil {
		return nil, apperr.Persistence("activate rule", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s: %w", id, apperr.ErrNotFound)
	}

	if err := reg.Apply(ctx, *rule); err != nil {
		return nil, apperr.Persistence("publish stylesheet", err)
	}
	slog.Info("customization applied", "owner", owner, "rule", id, "component", rule.Component)
	return rule, nil
}

// Rollback deactivates the rule and republishes the owner's stylesheet.
// The rule stays stored so it can be applied again.
func (s *Service) Rollback(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error) {
	defer s.lock(owner)()

	reg := NewRegistry(owner, s.rules, s.surface)
	if err := reg.Load(ctx); err != nil {
		return nil, apperr.Persistence("load rules", err)
	}

	rule, err := s.rules.SetActive(ctx, owner, id, false)
	if err != nil {
		return nil, apperr.Persistence("deactivate rule", err)
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s: %w", id, apperr.ErrNotFound)
	}

	if err := reg.Remove(ctx, id); err != nil {
		return nil, apperr.Persistence("publish stylesheet", err)
	}
	slog.Info("customization rolled back", "owner", owner, "rule", id)
	return rule, nil
}

// Stylesheet returns the owner's published CSS, rebuilding it from the
// stored rules when the surface has none.
func (s *Service) Stylesheet(ctx context.Context, owner uuid.UUID) (string, error) {
	sheet := NewSheet(s.surface, owner, DynamicSheet)
	css, ok, err := sheet.Read(ctx)
	if err != nil {
		slog.Warn("stylesheet read failed, rebuilding", "owner", owner, "error", err)
	} else if ok {
		return css, nil
	}

	defer s.lock(owner)()
	reg := NewRegistry(owner, s.rules, s.surface)
	if err := reg.Load(ctx); err != nil {
		return "", apperr.Persistence("load rules", err)
	}
	return reg.Stylesheet(), nil
}

// StartPreview shows the rule in the owner's preview stylesheet without
// changing its stored state.
func (s *Service) StartPreview(ctx context.Context, owner, id uuid.UUID) (string, error) {
	rule, err := s.Get(ctx, owner, id)
	if err != nil {
		return "", err
	}
	css, err := s.preview(owner).Enable(ctx, *rule)
	if err != nil {
		return "", apperr.Persistence("publish preview", err)
	}
	return css, nil
}

// StopPreview removes the owner's preview stylesheet.
func (s *Service) StopPreview(ctx context.Context, owner uuid.UUID) error {
	if err := s.preview(owner).Disable(ctx); err != nil {
		return apperr.Persistence("remove preview", err)
	}
	return nil
}

// PreviewStylesheet returns the owner's preview CSS, if a preview is
// showing.
func (s *Service) PreviewStylesheet(ctx context.Context, owner uuid.UUID) (string, bool, error) {
	css, ok, err := s.preview(owner).Stylesheet(ctx)
	if err != nil {
		return "", false, apperr.Persistence("read preview", err)
	}
	return css, ok, nil
}
