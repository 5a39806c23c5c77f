package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/cogniquiz/internal/store"
)

// LoggingProvider is a decorator that records every LLM request.
type LoggingProvider struct {
	inner    Provider
	recorder store.LLMRequestRecorder
	now      func() time.Time
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, recorder store.LLMRequestRecorder) Provider {
	return &LoggingProvider{inner: p, recorder: recorder, now: time.Now}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	rec := store.LLMRequest{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   l.now().Sub(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
		CreatedAt:   start.UTC(),
	}

	if resp != nil {
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			rec.Model = resp.Model
		}
		rec.ResponseBody = resp.Content
	}

	if err != nil {
		rec.ErrorMessage = err.Error()
		var mt *ErrMaxTokensExceeded
		if errors.As(err, &mt) {
			rec.ResponseBody = mt.Content
		}
	}

	// A failed write never fails the request.
	if logErr := l.recorder.AppendLLMRequest(ctx, rec); logErr != nil {
		slog.WarnContext(ctx, "failed to record LLM request", "purpose", purpose, "error", logErr)
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
