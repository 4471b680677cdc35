// Package llm answers prompts through a hosted language model.
package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/Rorical/MediBot/internal/config"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Responder turns a prompt into model text.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

// SelectProvider picks the configured provider, or the first one with a key.
func SelectProvider(cfg config.ServerConfig) string {
	if p := strings.ToLower(strings.TrimSpace(cfg.Provider)); p != "" {
		return p
	}
	switch {
	case cfg.GeminiAPIKey != "":
		return ProviderGemini
	case cfg.OpenAIAPIKey != "":
		return ProviderOpenAI
	default:
		return ProviderNone
	}
}

// New builds the responder for cfg. It returns a nil Responder when no
// provider is configured.
func New(ctx context.Context, cfg config.ServerConfig) (Responder, error) {
	switch provider := SelectProvider(cfg); provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("gemini provider needs GEMINI_API")
		}
		return NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("openai provider needs OPENAI_API_KEY")
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.Model), nil
	case ProviderNone:
		return nil, nil
	default:
		return nil, errors.Errorf("unknown provider %q", provider)
	}
}
