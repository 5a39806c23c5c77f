package llm

import (
	"context"
	"errors"
)

// Default generation parameters for single-prompt calls.
const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
)

// TextClient is the single-prompt view of a Provider. Every failure is
// returned as a *GenerationError.
type TextClient struct {
	provider    Provider
	system      string
	maxTokens   int
	temperature float64
}

// NewTextClient wraps p. The provider should already carry retry
// middleware; TextClient itself makes exactly one Generate call.
func NewTextClient(p Provider) *TextClient {
	return &TextClient{
		provider:    p,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
	}
}

// WithSystem returns a copy that sends system as the system prompt.
func (c *TextClient) WithSystem(system string) *TextClient {
	cp := *c
	cp.system = system
	return &cp
}

// WithTemperature returns a copy with a different sampling temperature.
func (c *TextClient) WithTemperature(t float64) *TextClient {
	cp := *c
	cp.temperature = t
	return &cp
}

// WithMaxTokens returns a copy with a different response token budget.
func (c *TextClient) WithMaxTokens(n int) *TextClient {
	cp := *c
	cp.maxTokens = n
	return &cp
}

// Call sends prompt and returns the model's raw text.
func (c *TextClient) Call(ctx context.Context, prompt string) (string, error) {
	if c == nil || c.provider == nil {
		return "", &GenerationError{
			Message: "no provider configured",
			Err:     &ErrProviderUnavailable{},
		}
	}

	resp, err := c.provider.Generate(ctx, UserPrompt(c.system, prompt, c.maxTokens, c.temperature))
	if err != nil {
		return "", Classify(err)
	}
	if resp.Content == "" {
		return "", &GenerationError{
			Message: "empty response",
			Err:     errors.New("model returned no text"),
		}
	}
	return resp.Content, nil
}

// ModelID reports the underlying model, or "" when unconfigured.
func (c *TextClient) ModelID() string {
	if c == nil || c.provider == nil {
		return ""
	}
	return c.provider.ModelID()
}
