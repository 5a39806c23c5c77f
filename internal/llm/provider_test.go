package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/cogniquiz/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: `{"b":2}`},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Content != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Content != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable on empty queue, got: %T", err)
	}
}

func TestMockProvider_AlwaysFailRepeats(t *testing.T) {
	mock := AlwaysFail(&ErrRateLimit{Err: errors.New("429")})
	for i := range 4 {
		_, err := mock.Generate(context.Background(), Request{})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("call %d: expected ErrRateLimit, got %T", i, err)
		}
	}
	if mock.CallCount() != 4 {
		t.Fatalf("expected 4 calls, got %d", mock.CallCount())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, PurposeQuizGeneration)
	if p := PurposeFrom(ctx); p != PurposeQuizGeneration {
		t.Fatalf("expected %q, got %q", PurposeQuizGeneration, p)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &ErrRateLimit{Err: errors.New("slow down")}, true},
		{"quota", &ErrQuotaExhausted{Err: errors.New("daily limit")}, true},
		{"wrapped rate limit", fmt.Errorf("call: %w", &ErrRateLimit{}), true},
		{"429 in message", errors.New("server said 429"), true},
		{"rate limit in message", errors.New("Rate Limit reached for requests"), true},
		{"quota in message", errors.New("Quota exceeded for metric"), true},
		{"resource exhausted", errors.New("status RESOURCE_EXHAUSTED"), true},
		{"server error", &ErrProviderUnavailable{Err: errors.New("500 internal")}, false},
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad json")}, false},
		{"generate in message", errors.New("failed to generate content"), false},
		{"canceled", context.Canceled, false},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), false},
		{"generation error flag", &GenerationError{Retryable: true, Message: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Fatalf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != nil {
		t.Fatal("expected nil for nil error")
	}

	base := &ErrQuotaExhausted{Err: errors.New("quota")}
	ge := Classify(base)
	if !ge.Retryable {
		t.Fatal("expected quota error to be retryable")
	}
	if !errors.Is(ge, base) {
		t.Fatal("expected GenerationError to unwrap to the cause")
	}
	if again := Classify(ge); again != ge {
		t.Fatal("expected an existing GenerationError to pass through")
	}
}

func TestTextClient_Call(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: "```json\n{}\n```"})
	c := NewTextClient(mock).WithSystem("quiz writer")

	out, err := c.Call(context.Background(), "write a quiz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "```json\n{}\n```" {
		t.Fatalf("expected raw text, got %q", out)
	}
	if mock.Calls[0].System != "quiz writer" {
		t.Fatalf("expected system prompt to be sent, got %q", mock.Calls[0].System)
	}
	if mock.Calls[0].Messages[0].Content != "write a quiz" {
		t.Fatalf("expected prompt as the user message, got %q", mock.Calls[0].Messages[0].Content)
	}
}

func TestTextClient_ErrorsAreGenerationErrors(t *testing.T) {
	tests := []struct {
		name          string
		client        *TextClient
		wantRetryable bool
	}{
		{"no provider", NewTextClient(nil), false},
		{"quota", NewTextClient(AlwaysFail(&ErrQuotaExhausted{Err: errors.New("q")})), true},
		{"server", NewTextClient(AlwaysFail(&ErrProviderUnavailable{Err: errors.New("500")})), false},
		{"empty", NewTextClient(NewMockProvider(MockResponse{Content: ""})), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Call(context.Background(), "p")
			var ge *GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("expected *GenerationError, got %T (%v)", err, err)
			}
			if ge.Retryable != tt.wantRetryable {
				t.Fatalf("Retryable = %v, want %v", ge.Retryable, tt.wantRetryable)
			}
		})
	}
}

type recorder struct {
	mu   sync.Mutex
	recs []store.LLMRequest
	err  error
}

func (r *recorder) AppendLLMRequest(_ context.Context, rec store.LLMRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return r.err
}

func TestLoggingProvider_RecordsRequests(t *testing.T) {
	rec := &recorder{}
	mock := NewMockProvider(
		MockResponse{Content: `{"ok":true}`, Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithLogging(mock, rec)
	ctx := WithPurpose(context.Background(), PurposeEvaluation)

	if _, err := p.Generate(ctx, UserPrompt("sys", "grade this", 100, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, UserPrompt("", "again", 100, 0)); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(rec.recs))
	}
	ok := rec.recs[0]
	if !ok.Success || ok.Purpose != PurposeEvaluation || ok.InputTokens != 12 || ok.ResponseBody != `{"ok":true}` {
		t.Fatalf("unexpected success record: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys") || !strings.Contains(ok.RequestBody, "grade this") {
		t.Fatalf("unexpected request body: %q", ok.RequestBody)
	}
	failed := rec.recs[1]
	if failed.Success || !strings.Contains(failed.ErrorMessage, "429") {
		t.Fatalf("unexpected failure record: %+v", failed)
	}
}

func TestLoggingProvider_RecorderFailureIgnored(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(MockResponse{Content: "hi"}), rec)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("expected recorder errors to be swallowed, got %v", err)
	}
	if resp.Content != "hi" {
		t.Fatalf("unexpected content %q", resp.Content)
	}
}

func TestLoggingProvider_KeepsTruncatedOutput(t *testing.T) {
	rec := &recorder{}
	p := WithLogging(AlwaysFail(&ErrMaxTokensExceeded{Content: `{"questions":[`}), rec)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected the truncation error to pass through")
	}
	if len(rec.recs) != 1 || rec.recs[0].ResponseBody != `{"questions":[` {
		t.Fatalf("expected truncated output in the record, got %+v", rec.recs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openrouter with key", Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("COGNIQUIZ_LLM_PROVIDER", "openrouter")
	t.Setenv("COGNIQUIZ_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("COGNIQUIZ_LLM_TIMEOUT", "45s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Timeout.Seconds() != 45 {
		t.Fatalf("expected 45s timeout, got %v", cfg.Timeout)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Fatalf("expected default gemini model, got %q", cfg.Gemini.Model)
	}
}

func TestResolve_Unconfigured(t *testing.T) {
	for _, k := range []string{
		"COGNIQUIZ_LLM_PROVIDER", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}

	p, _, err := Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil provider, got %T", p)
	}
}

func TestResolve_Mock(t *testing.T) {
	t.Setenv("COGNIQUIZ_LLM_PROVIDER", "mock")

	p, cfg, err := Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "mock" || p.ModelID() != "mock" {
		t.Fatalf("expected mock provider, got %q / %v", cfg.Provider, p)
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gemini-2.0-flash")
	if c == nil {
		t.Fatal("expected pricing for the default model")
	}
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected $0.50, got %v", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}
