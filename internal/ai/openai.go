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

// openAIProvider implements the Provider interface using the OpenAI
// chat completions API (POST /v1/chat/completions).
type openAIProvider struct {
	name   string
	config ProviderConfig
	client *http.Client
}

// newOpenAI creates a new OpenAI provider.
func newOpenAI(cfg ProviderConfig) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return &openAIProvider{
		name:   "openai",
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *openAIProvider) Name() string { return p.name }

// Generate sends a chat completion request and returns the assistant's
// reply text.
func (p *openAIProvider) Generate(ctx context.Context, req Request) (string, error) {
	return p.doChat(ctx, p.chatRequest(req))
}

// chatRequest maps a Request onto the chat completions body. Shared with
// Mistral, whose API has the same format.
func (p *openAIProvider) chatRequest(req Request) openAIRequest {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	body := openAIRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}
	if req.Format == FormatJSON {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	return body
}

// doChat performs the HTTP call to the chat completions endpoint.
func (p *openAIProvider) doChat(ctx context.Context, body openAIRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%s marshal: %w", p.name, err)
	}

	url := p.config.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%s request: %w", p.name, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", unavailable(p.name+" http", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", unavailable(p.name+" read body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: p.name, Status: resp.StatusCode, Body: string(respBody)}
	}

	var result openAIResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", unavailable(p.name+" unmarshal", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned: %w", p.name, ErrUnavailable)
	}

	return result.Choices[0].Message.Content, nil
}

// --- OpenAI-compatible request/response types ---
// Used by both OpenAI and Mistral providers.

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
	MaxTokens      int                   `json:"max_completion_tokens,omitempty"`
	Temperature    *float64              `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}
