// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package ai provides a unified interface for interacting with multiple
// LLM providers (OpenAI, Gemini, Claude, Mistral). Each provider implements
// the Provider interface, and the Registry selects the active one by name.
package ai

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Role tags a message in a conversation sent to a provider.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a request.
type Message struct {
	Role    Role
	Content string
}

// Format hints at the shape of the reply the caller expects.
type Format int

const (
	FormatText Format = iota
	// FormatJSON asks the provider for a single JSON object, using its
	// native JSON mode where it has one.
	FormatJSON
)

// Request is a single text-generation call.
type Request struct {
	// Model overrides the provider's configured model when non-empty.
	Model       string
	Messages    []Message
	Format      Format
	MaxTokens   int
	Temperature *float64
}

// System returns the system messages joined by blank lines.
func (r Request) System() string {
	var parts []string
	for _, m := range r.Messages {
		if m.Role == RoleSystem {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Conversation returns the non-system messages in order.
func (r Request) Conversation() []Message {
	return slices.DeleteFunc(slices.Clone(r.Messages), func(m Message) bool {
		return m.Role == RoleSystem
	})
}

// Provider defines the interface that all AI providers must implement.
// Each provider handles its own HTTP communication and response parsing.
type Provider interface {
	// Generate sends the request to the LLM and returns the reply text.
	Generate(ctx context.Context, req Request) (string, error)

	// Name returns the provider identifier (e.g., "openai", "gemini").
	Name() string
}

// ProviderConfig holds the credentials and settings for a single provider.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	// FallbackModel is tried once when a call with Model fails.
	FallbackModel string
}

// Registry manages available AI providers and selects the active one.
// It supports runtime switching by changing the active provider name.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	active    string
	openai    ProviderConfig // template for providers built from user keys
	moderator Moderator      // may be nil if no moderation API is available
}

// NewRegistry creates a registry and initialises providers for every config
// that has a non-empty API key. Providers without keys are silently skipped.
// A Moderator is configured when OpenAI or Mistral keys are present; with
// both, OpenAI is tried first and Mistral takes over on auth errors.
func NewRegistry(active string, configs map[string]ProviderConfig) *Registry {
	r := &Registry{
		providers: make(map[string]Provider),
		active:    active,
		openai:    configs["openai"],
	}

	for name, cfg := range configs {
		if cfg.APIKey == "" {
			continue
		}
		if p := newProvider(name, cfg); p != nil {
			r.providers[name] = p
		}
	}

	openaiCfg, hasOpenAI := configs["openai"]
	hasOpenAI = hasOpenAI && openaiCfg.APIKey != ""
	mistralCfg, hasMistral := configs["mistral"]
	hasMistral = hasMistral && mistralCfg.APIKey != ""

	switch {
	case hasOpenAI && hasMistral:
		r.moderator = newFallbackModerator(
			newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL),
			newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL),
		)
	case hasOpenAI:
		r.moderator = newOpenAIModerator(openaiCfg.APIKey, openaiCfg.BaseURL)
	case hasMistral:
		r.moderator = newMistralModerator(mistralCfg.APIKey, mistralCfg.BaseURL)
	}

	return r
}

// newProvider builds the named provider, wrapped with its fallback model
// when one is configured. Unknown names return nil.
func newProvider(name string, cfg ProviderConfig) Provider {
	var p Provider
	switch name {
	case "openai":
		p = newOpenAI(cfg)
	case "gemini":
		p = newGemini(cfg)
	case "claude":
		p = newClaude(cfg)
	case "mistral":
		p = newMistral(cfg)
	default:
		return nil
	}
	return WithFallback(p, cfg.FallbackModel)
}

// Generate calls the active provider's Generate method.
func (r *Registry) Generate(ctx context.Context, req Request) (string, error) {
	p, err := r.Active()
	if err != nil {
		return "", err
	}
	return p.Generate(ctx, req)
}

// Active returns the currently active provider.
func (r *Registry) Active() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[r.active]
	if !ok {
		return nil, fmt.Errorf("ai: no provider configured for %q: %w", r.active, ErrNotConfigured)
	}
	return p, nil
}

// Resolve returns the provider to use for a caller. A caller-supplied
// OpenAI key takes precedence over the server's active provider; without
// one the active provider is used.
func (r *Registry) Resolve(apiKey string) (Provider, error) {
	if apiKey != "" {
		r.mu.RLock()
		cfg := r.openai
		r.mu.RUnlock()

		cfg.APIKey = apiKey
		return newProvider("openai", cfg), nil
	}
	return r.Active()
}

// SetActive switches the active provider at runtime. Returns an error if
// the named provider has no API key configured.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("ai: provider %q is not available (no API key?): %w", name, ErrNotConfigured)
	}
	r.active = name
	return nil
}

// ActiveName returns the name of the currently active provider.
func (r *Registry) ActiveName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.active
}

// Available returns the names of all providers that have valid API keys,
// sorted.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds or replaces a provider in the registry. This allows injecting
// custom providers at runtime (e.g. for testing or plugin-based providers).
func (r *Registry) Register(name string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// CheckPrompt runs the user prompt through the moderation API before
// generation. Returns a safe result when no moderator is configured.
// Returns a *ModerationResult with Safe=false and flagged Categories if the
// prompt violates policies.
func (r *Registry) CheckPrompt(ctx context.Context, prompt string) (*ModerationResult, error) {
	r.mu.RLock()
	m := r.moderator
	r.mu.RUnlock()

	if m == nil {
		return &ModerationResult{Safe: true}, nil
	}
	return m.CheckSafety(ctx, prompt)
}

// HasProvider checks whether a named provider is configured and available.
func (r *Registry) HasProvider(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.providers[name]
	return ok
}
