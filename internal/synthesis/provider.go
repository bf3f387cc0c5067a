// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis turns aggregated research records into a grounded
// narrative answer with positional citations.
package synthesis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/cre-research/pkg/types"
)

// Request carries everything a provider needs for one answer. Model
// providers send Prompt as-is; the offline provider renders directly
// from the structured fields.
type Request struct {
	Query    string
	Records  []types.ResearchRecord
	Document *types.DocumentContext
	Prompt   string
}

// Provider generates the narrative answer for a synthesis request.
type Provider interface {
	// Name identifies the provider in logs and reports.
	Name() string

	// Complete returns the markdown answer for one request.
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the configured provider. An unset provider picks
// the first backend with a configured key, falling back to the offline
// renderer so the pipeline always produces an answer.
func NewProvider(cfg types.SynthesisConfig, client *http.Client) (Provider, error) {
	provider := cfg.Provider
	if provider == "" {
		switch {
		case cfg.AnthropicAPIKey != "":
			provider = types.ProviderClaude
		case cfg.GeminiAPIKey != "":
			provider = types.ProviderGemini
		default:
			provider = types.ProviderOffline
		}
	}

	switch provider {
	case types.ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("claude provider requires an Anthropic API key")
		}
		return &ClaudeProvider{
			APIKey:    cfg.AnthropicAPIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			Client:    client,
		}, nil
	case types.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires a Gemini API key")
		}
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.Model)
	case types.ProviderOffline:
		return OfflineProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q", provider)
	}
}
