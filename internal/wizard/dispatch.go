package wizard

import (
	"context"

	"github.com/google/uuid"

	"pulsecrm/internal/apperr"
	"pulsecrm/internal/models"
)

// Wizard actions accepted by Dispatch.
const (
	ActionGenerate = "generate"
	ActionApply    = "apply"
	ActionRollback = "rollback"
)

// Activator applies and rolls back stored rules.
type Activator interface {
	Apply(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error)
	Rollback(ctx context.Context, owner, id uuid.UUID) (*models.CustomizationRule, error)
}

// Command is one request to the single-endpoint wizard protocol.
type Command struct {
	Action          string     `json:"action" validate:"required,oneof=generate apply rollback"`
	UserRequest     string     `json:"userRequest"`
	SessionID       *uuid.UUID `json:"sessionId,omitempty"`
	CustomizationID *uuid.UUID `json:"customizationId,omitempty"`
}

// Result is the outcome of a Command. Generate fills Data; apply and
// rollback fill Message.
type Result struct {
	Data    *Candidate `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

// Dispatcher routes wizard commands to the generator and the rule service.
type Dispatcher struct {
	gen   *Generator
	rules Activator
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(gen *Generator, rules Activator) *Dispatcher {
	return &Dispatcher{gen: gen, rules: rules}
}

// Dispatch runs cmd for owner.
func (d *Dispatcher) Dispatch(ctx context.Context, owner uuid.UUID, cmd Command) (*Result, error) {
	if err := apperr.Validate(cmd); err != nil {
		return nil, err
	}

	switch cmd.Action {
	case ActionGenerate:
		if cmd.UserRequest == "" {
			return nil, apperr.NewValidationError("userRequest", "Missing userRequest parameter", nil)
		}
		c, err := d.gen.Generate(ctx, owner, cmd.UserRequest, cmd.SessionID)
		if err != nil {
			return nil, err
		}
		return &Result{Data: c}, nil

	case ActionApply:
		if cmd.CustomizationID == nil {
			return nil, apperr.NewValidationError("customizationId", "Missing customizationId parameter", nil)
		}
		if _, err := d.rules.Apply(ctx, owner, *cmd.CustomizationID); err != nil {
			return nil, err
		}
		return &Result{Message: "Customization applied successfully"}, nil

	default:
		if cmd.CustomizationID == nil {
			return nil, apperr.NewValidationError("customizationId", "Missing customizationId parameter", nil)
		}
		if _, err := d.rules.Rollback(ctx, owner, *cmd.CustomizationID); err != nil {
			return nil, err
		}
		return &Result{Message: "Customization rolled back successfully"}, nil
	}
}
