// Package llm provides the external language-model capability used for
// classification and solution suggestions.
package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/intake-engine/internal/config"
)

// ErrNotConfigured is returned by the no-op completer.
var ErrNotConfigured = errors.New("llm provider not configured")

// Completer sends one system+user prompt pair and returns the text reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
	Name() string
}

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewCompleter builds the provider selected by cfg.Provider.
func NewCompleter(cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "", "none":
		return noopCompleter{}, nil
	case "openai":
		return NewOpenAIClient(cfg, logger)
	case "anthropic":
		return NewAnthropicClient(cfg, logger)
	case "gemini":
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

type noopCompleter struct{}

func (noopCompleter) Complete(context.Context, string, string) (string, error) {
	return "", ErrNotConfigured
}

func (noopCompleter) Name() string { return "none" }
