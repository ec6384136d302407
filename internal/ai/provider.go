package ai

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/scgen/internal/config"
	"github.com/amishk599/scgen/internal/model"
)

// Fixed generation parameters. Every upstream call uses the same values.
const (
	SystemInstruction = "You are a professional career advisor specializing in helping job seekers create excellent selection criteria responses. Provide detailed, specific, and well-structured responses that demonstrate the candidate's skills and experience effectively."
	Temperature       = 0.7
	MaxTokens         = 1000
)

// LLMProvider sends a prompt to an LLM and returns the first completion's text.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the provider selected by cfg. It returns
// model.ErrNotConfigured when no API key is set so callers can fail closed.
func NewProvider(ctx context.Context, cfg config.AIConfig, httpClient *http.Client) (LLMProvider, error) {
	if cfg.APIKey == "" {
		return nil, model.ErrNotConfigured
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient), nil
	case config.ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
