// Package llm is the generation client used by the quiz pipeline. It wraps
// several text-generation vendors behind one Provider interface and adds
// retry and request logging as decorators.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider is the core abstraction for text generation.
type Provider interface {
	// Generate sends a prompt to the model and returns its raw text output.
	// The text is not parsed here; callers repair and validate it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt.
	System string

	// Messages is the conversation. Quiz generation and evaluation are
	// single-turn, so this normally holds one user message.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema that decoded model output is checked
// against with ValidateJSON.
type Schema struct {
	// Name identifies the schema, e.g. "quiz-questions".
	Name string

	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model's output.
type Response struct {
	// Content is the raw generated text, which may wrap JSON in prose or
	// code fences.
	Content string

	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is "end". Truncated output surfaces as
	// *ErrMaxTokensExceeded rather than a Response.
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// completion is what a vendor adapter extracts from its SDK response
// before it is checked and normalized by finish.
type completion struct {
	vendor  string
	content string
	model   string
	stop    string
	usage   Usage
}

// finish turns a vendor completion into a Response. Blank output is an
// *ErrInvalidResponse and truncated output an *ErrMaxTokensExceeded.
func finish(c completion) (*Response, error) {
	if strings.TrimSpace(c.content) == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("%s returned no text", c.vendor)}
	}
	if c.stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: c.content}
	}
	if c.usage.TotalTokens == 0 {
		c.usage.TotalTokens = c.usage.InputTokens + c.usage.OutputTokens
	}
	return &Response{
		Content:    c.content,
		Usage:      c.usage,
		Model:      c.model,
		StopReason: c.stop,
	}, nil
}
