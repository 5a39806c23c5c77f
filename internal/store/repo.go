package store

import (
	"context"
	"time"
)

// LLMRequest captures a single generation call.
type LLMRequest struct {
	ID           int64
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	CreatedAt    time.Time
}

// LLMRequestRecorder appends generation calls to the request log.
type LLMRequestRecorder interface {
	AppendLLMRequest(ctx context.Context, rec LLMRequest) error
}

// LLMUsage aggregates logged requests per purpose and model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs float64
}

// LLMRequestLog is the read side of the request log.
type LLMRequestLog interface {
	LLMRequestRecorder

	// RecentLLMRequests returns up to limit requests, newest first.
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequest, error)

	// LLMUsage returns per purpose/model totals ordered by purpose then model.
	LLMUsage(ctx context.Context) ([]LLMUsage, error)
}
