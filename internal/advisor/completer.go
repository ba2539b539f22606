package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/britishfeed/feedstore/config"
	"github.com/britishfeed/feedstore/internal/domain"
)

// Completer is the external text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, system string, turns []domain.ChatTurn) (string, error)
}

// CompletionOptions are shared by every adapter.
type CompletionOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func optionsFromConfig(c config.AdvisorConfig) CompletionOptions {
	o := CompletionOptions{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Timeout:     time.Duration(c.TimeoutSecs) * time.Second,
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 600
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// NewCompleter builds the adapter named by cfg.Provider. Provider "none"
// returns a nil Completer and every reply is the fallback.
func NewCompleter(ctx context.Context, cfg config.AdvisorConfig) (Completer, error) {
	opts := optionsFromConfig(cfg)
	switch cfg.Provider {
	case "none":
		return nil, nil
	case "", "openai":
		return NewOpenAICompleter(cfg.BaseURL, cfg.APIKey, opts), nil
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.APIKey, opts)
	default:
		return nil, fmt.Errorf("unsupported advisor provider %q", cfg.Provider)
	}
}
