// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package customize keeps each owner's compiled stylesheet in step with
// their active customization rules, and runs previews of candidate rules
// in a stylesheet of their own.
package customize

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Stylesheet resource names. Each owner has at most one of each.
const (
	DynamicSheet = "ai-dynamic-styles"
	PreviewSheet = "ai-preview-styles"
)

// Surface is where compiled stylesheets are published. Replace overwrites
// the resource at key wholesale; Remove detaches it.
type Surface interface {
	Replace(ctx context.Context, key, css string) error
	Remove(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (css string, ok bool, err error)
}

// SheetKey returns the surface key of an owner's named stylesheet.
func SheetKey(owner uuid.UUID, name string) string {
	return owner.String() + "/" + name
}

// Sheet is a single stylesheet resource on a surface. All writes to the
// resource go through one Sheet, so its content is always the last CSS
// passed to Replace.
type Sheet struct {
	mu      sync.Mutex
	key     string
	surface Surface
}

// NewSheet binds the owner's named stylesheet on surface.
func NewSheet(surface Surface, owner uuid.UUID, name string) *Sheet {
	return &Sheet{key: SheetKey(owner, name), surface: surface}
}

// Key returns the surface key the sheet writes to.
func (s *Sheet) Key() string { return s.key }

// Replace sets the sheet's entire content to css.
func (s *Sheet) Replace(ctx context.Context, css string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.surface.Replace(ctx, s.key, css); err != nil {
		return fmt.Errorf("replace stylesheet %s: %w", s.key, err)
	}
	return nil
}

// Remove detaches the sheet from the surface.
func (s *Sheet) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.surface.Remove(ctx, s.key); err != nil {
		return fmt.Errorf("remove stylesheet %s: %w", s.key, err)
	}
	return nil
}

// Read returns the sheet's current content and whether it is attached.
func (s *Sheet) Read(ctx context.Context) (string, bool, error) {
	css, ok, err := s.surface.Get(ctx, s.key)
	if err != nil {
		return "", false, fmt.Errorf("read stylesheet %s: %w", s.key, err)
	}
	return css, ok, nil
}

// Document is an in-memory Surface.
type Document struct {
	mu     sync.RWMutex
	sheets map[string]string
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{sheets: make(map[string]string)}
}

func (d *Document) Replace(_ context.Context, key, css string) error {
	d.mu.Lock()
	d.sheets[key] = css
	d.mu.Unlock()
	return nil
}

func (d *Document) Remove(_ context.Context, key string) error {
	d.mu.Lock()
	delete(d.sheets, key)
	d.mu.Unlock()
	return nil
}

func (d *Document) Get(_ context.Context, key string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	css, ok := d.sheets[key]
	return css, ok, nil
}

// Len returns the number of attached stylesheets.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sheets)
}
