// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const claudeDefaultMaxTokens = 4096

// claudeProvider implements the Provider interface using the Anthropic
// Messages API (POST /v1/messages).
type claudeProvider struct {
	config ProviderConfig
	client *http.Client
}

// newClaude creates a new Anthropic Claude provider.
func newClaude(cfg ProviderConfig) *claudeProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	return &claudeProvider{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *claudeProvider) Name() string { return "claude" }

// Generate sends the conversation to the Messages API. System messages go
// in the top-level system field. The API has no JSON mode, so
// FormatJSON relies on the system instruction alone.
func (p *claudeProvider) Generate(ctx context.Context, r Request) (string, error) {
	model := r.Model
	if model == "" {
		model = p.config.Model
	}
	maxTokens := r.MaxTokens
	if maxTokens == 0 {
		maxTokens = claudeDefaultMaxTokens
	}

	body := claudeRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      r.System(),
		Temperature: r.Temperature,
	}
	for _, m := range r.Conversation() {
		body.Messages = append(body.Messages, claudeMessage{Role: string(m.Role), Content: m.Content})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("claude marshal: %w", err)
	}

	url := p.config.BaseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", unavailable("claude http", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable("claude read body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "claude", Status: resp.StatusCode, Body: string(respBody)}
	}

	var result claudeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", unavailable("claude unmarshal", err)
	}

	// Extract text from the first text content block.
	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("claude: no text content in response: %w", ErrUnavailable)
}

// --- Anthropic Messages API types ---

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type claudeContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
}
