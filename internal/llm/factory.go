package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/cogniquiz/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// A nil recorder skips request logging.
func NewProvider(ctx context.Context, cfg Config, recorder store.LLMRequestRecorder) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → retry → logging → base
	if recorder != nil {
		base = WithLogging(base, recorder)
	}
	return WithRetry(base, cfg.Retry), nil
}

// Resolve picks the provider configuration from the environment. An
// explicit COGNIQUIZ_LLM_PROVIDER wins; otherwise the standard vendor key
// variables are tried. When nothing is configured it returns a nil
// Provider and a nil error so callers can run in fallback mode.
func Resolve(ctx context.Context, recorder store.LLMRequestRecorder) (Provider, Config, error) {
	var cfg Config
	if os.Getenv("COGNIQUIZ_LLM_PROVIDER") != "" {
		cfg = ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, cfg, err
		}
	} else {
		var ok bool
		cfg, ok = DiscoverConfig()
		if !ok {
			return nil, Config{}, nil
		}
	}

	p, err := NewProvider(ctx, cfg, recorder)
	if err != nil {
		return nil, cfg, err
	}
	return p, cfg, nil
}
