package customize

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pulsecrm/internal/models"
	"pulsecrm/internal/style"
)

// Preview shows a single candidate rule in the owner's preview stylesheet.
// It never reads or writes stored rules and never touches the dynamic
// stylesheet.
type Preview struct {
	mu        sync.Mutex
	sheet     *Sheet
	enabled   bool
	candidate *models.CustomizationRule
}

// NewPreview binds the owner's preview stylesheet on surface.
func NewPreview(surface Surface, owner uuid.UUID) *Preview {
	return &Preview{sheet: NewSheet(surface, owner, PreviewSheet)}
}

// Enable compiles candidate alone, not merged with anything, into the
// preview stylesheet and returns the CSS.
func (p *Preview) Enable(ctx context.Context, candidate models.CustomizationRule) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	css := style.CompilePreview(candidate.Component, candidate.Modifications)
	if err := p.sheet.Replace(ctx, css); err != nil {
		return "", err
	}
	p.enabled = true
	p.candidate = &candidate
	return css, nil
}

// Disable removes the preview stylesheet.
func (p *Preview) Disable(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.sheet.Remove(ctx); err != nil {
		return err
	}
	p.enabled = false
	p.candidate = nil
	return nil
}

// Enabled reports whether a preview is showing.
func (p *Preview) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Candidate returns the rule being previewed, or nil.
func (p *Preview) Candidate() *models.CustomizationRule {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.candidate
}

// Stylesheet returns the preview CSS as published on the surface.
func (p *Preview) Stylesheet(ctx context.Context) (string, bool, error) {
	return p.sheet.Read(ctx)
}
