package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// fallbackProvider retries a failed call exactly once with another model.
type fallbackProvider struct {
	inner Provider
	model string
}

// WithFallback wraps p so that a failed call is retried once with model.
// Auth failures and cancelled contexts are not retried. An empty model
// returns p unchanged.
func WithFallback(p Provider, model string) Provider {
	if model == "" {
		return p
	}
	return &fallbackProvider{inner: p, model: model}
}

func (f *fallbackProvider) Name() string { return f.inner.Name() }

func (f *fallbackProvider) Generate(ctx context.Context, req Request) (string, error) {
	out, err := f.inner.Generate(ctx, req)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil || errors.Is(err, ErrUnauthorized) || req.Model == f.model {
		return "", err
	}

	slog.Warn("ai call failed, retrying with fallback model",
		"provider", f.inner.Name(), "fallback_model", f.model, "error", err)

	req.Model = f.model
	out, fbErr := f.inner.Generate(ctx, req)
	if fbErr != nil {
		return "", fmt.Errorf("%s fallback model %s: %w", f.inner.Name(), f.model, fbErr)
	}
	return out, nil
}
