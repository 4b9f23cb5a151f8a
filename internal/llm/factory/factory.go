// Package factory builds the llm.Completer selected on the command line.
package factory

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/medtrans/internal/llm"
	"codeberg.org/snonux/medtrans/internal/llm/gemini"
	"codeberg.org/snonux/medtrans/internal/llm/openrouter"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	SiteURL  string
	SiteName string

	BreakerThreshold uint32
	BreakerCooldown  time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Provider is a completer that can also list its models.
type Provider interface {
	llm.Completer
	llm.ModelLister
}

// New returns the configured provider wrapped in a circuit breaker, and the
// unwrapped provider for model listing.
func New(ctx context.Context, cfg Config) (llm.Completer, llm.ModelLister, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	completer := llm.NewBreaker(provider, llm.BreakerSettings{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
		Logger:    cfg.Logger,
	})
	return completer, provider, nil
}

func newProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", ProviderOpenRouter:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenRouter API key not found")
		}
		return openrouter.NewClient(openrouter.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			SiteURL:    cfg.SiteURL,
			SiteName:   cfg.SiteName,
			HTTPClient: cfg.HTTPClient,
		}), nil
	case ProviderGemini:
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			HTTPClient: cfg.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: %s, %s)", cfg.Provider, ProviderOpenRouter, ProviderGemini)
	}
}
