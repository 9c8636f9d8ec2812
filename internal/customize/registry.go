// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package customize

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
	"pulsecrm/internal/style"
)

// RuleLister lists every rule an owner has, active or not.
type RuleLister interface {
	List(ctx context.Context, owner uuid.UUID) ([]models.CustomizationRule, error)
}

// Registry holds one owner's rules and the stylesheet compiled from the
// active ones. Active rules are merged in activation order, so the most
// recently applied rule wins where rules overlap.
type Registry struct {
	mu     sync.Mutex
	owner  uuid.UUID
	lister RuleLister
	sheet  *Sheet

	rules  map[uuid.UUID]*models.CustomizationRule
	order  []uuid.UUID // active rule IDs, oldest activation first
	merged map[string]style.Modifications
	css    string
}

// NewRegistry returns an empty registry for owner that publishes to the
// owner's dynamic stylesheet on surface.
func NewRegistry(owner uuid.UUID, lister RuleLister, surface Surface) *Registry {
	return &Registry{
		owner:  owner,
		lister: lister,
		sheet:  NewSheet(surface, owner, DynamicSheet),
		rules:  make(map[uuid.UUID]*models.CustomizationRule),
		merged: make(map[string]style.Modifications),
	}
}

// Load replaces the registry's state with the owner's stored rules and
// republishes the stylesheet.
func (r *Registry) Load(ctx context.Context) error {
	list, err := r.lister.List(ctx, r.owner)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = make(map[uuid.UUID]*models.CustomizationRule, len(list))
	var active []*models.CustomizationRule
	for i := range list {
		rule := list[i]
		r.rules[rule.ID] = &rule
		if rule.IsActive {
			active = append(active, &rule)
		}
	}
	slices.SortFunc(active, activationOrder)

	r.order = r.order[:0]
	for _, rule := range active {
		r.order = append(r.order, rule.ID)
	}
	return r.publish(ctx)
}

// Apply activates rule. It becomes the most recently applied rule even if
// it was already active.
func (r *Registry) Apply(ctx context.Context, rule models.CustomizationRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule.IsActive = true
	r.rules[rule.ID] = &rule
	r.order = slices.DeleteFunc(r.order, func(id uuid.UUID) bool { return id == rule.ID })
	r.order = append(r.order, rule.ID)
	return r.publish(ctx)
}

// Remove deactivates the rule with id. The rule itself is kept.
func (r *Registry) Remove(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule, ok := r.rules[id]; ok {
		rule.IsActive = false
	}
	r.order = slices.DeleteFunc(r.order, func(v uuid.UUID) bool { return v == id })
	return r.publish(ctx)
}

// Merged returns the effective modifications per component.
func (r *Registry) Merged() map[string]style.Modifications {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]style.Modifications, len(r.merged))
	for k, v := range r.merged {
		out[k] = v
	}
	return out
}

// Stylesheet returns the CSS last published.
func (r *Registry) Stylesheet() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.css
}

// Rules returns the active and inactive rules, active first in activation
// order, then inactive newest first.
func (r *Registry) Rules() (active, inactive []models.CustomizationRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		active = append(active, *r.rules[id])
	}
	for _, rule := range r.rules {
		if !rule.IsActive {
			inactive = append(inactive, *rule)
		}
	}
	slices.SortFunc(inactive, func(a, b models.CustomizationRule) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return active, inactive
}

// publish recompiles from the active rules and replaces the sheet. The
// caller holds r.mu.
func (r *Registry) publish(ctx context.Context) error {
	rules := make([]style.Rule, 0, len(r.order))
	for _, id := range r.order {
		rules = append(rules, r.rules[id].StyleRule())
	}
	r.merged = style.MergeAll(rules)
	r.css = style.Compile(r.merged)
	return r.sheet.Replace(ctx, r.css)
}

func activationOrder(a, b *models.CustomizationRule) int {
	return cmp.Or(
		activatedAt(a).Compare(activatedAt(b)),
		a.CreatedAt.Compare(b.CreatedAt),
		slices.Compare(a.ID[:], b.ID[:]),
	)
}

func activatedAt(r *models.CustomizationRule) time.Time {
	if r.ActivatedAt != nil {
		return *r.ActivatedAt
	}
	return r.CreatedAt
}
