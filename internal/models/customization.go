// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"pulsecrm/internal/style"
)

// CustomizationRule is a persisted, component-scoped style rule owned by a
// single user. Rules are created inactive and only contribute to the
// stylesheet while IsActive is true.
type CustomizationRule struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Name          string              `json:"customization_name"`
	Component     string              `json:"component_name"`
	Modifications style.Modifications `json:"modifications"`
	IsActive      bool                `json:"is_active"`
	ActivatedAt   *time.Time          `json:"activated_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// StyleRule returns the compiler's view of the rule.
func (r *CustomizationRule) StyleRule() style.Rule {
	return style.Rule{Component: r.Component, Modifications: r.Modifications}
}

// RuleNameLimit caps the generated rule name, counted in characters.
const RuleNameLimit = 100

// RuleName derives a rule's display name from the request that produced it.
func RuleName(request string) string {
	return truncateRunes(request, RuleNameLimit)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
