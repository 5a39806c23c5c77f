package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// AppendLLMRequest records a generation call.
func (s *Store) AppendLLMRequest(ctx context.Context, rec LLMRequest) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	q, args := s.builder().Insert(tableLLMRequests).
		Columns("provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
			"success", "error_message", "request_body", "response_body", "created_at").
		Values(rec.Provider, rec.Model, rec.Purpose, rec.InputTokens, rec.OutputTokens, rec.LatencyMs,
			rec.Success, rec.ErrorMessage, rec.RequestBody, rec.ResponseBody, rec.CreatedAt.UTC()).
		Query()
	if err := s.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save LLM request: %w", err)
	}
	return nil
}

// RecentLLMRequests returns up to limit requests, newest first.
func (s *Store) RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequest, error) {
	sel := s.builder().
		Select("id", "provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
			"success", "error_message", "request_body", "response_body", "created_at").
		From(s.builder().Table(tableLLMRequests)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel.Limit(limit)
	}
	q, args := sel.Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM requests: %w", err)
	}
	defer rows.Close()

	var out []LLMRequest
	for rows.Next() {
		var r LLMRequest
		if err := rows.Scan(&r.ID, &r.Provider, &r.Model, &r.Purpose, &r.InputTokens, &r.OutputTokens,
			&r.LatencyMs, &r.Success, &r.ErrorMessage, &r.RequestBody, &r.ResponseBody, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan LLM request: %w", err)
		}
		r.CreatedAt = r.CreatedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// LLMUsage aggregates the request log per purpose and model.
func (s *Store) LLMUsage(ctx context.Context) ([]LLMUsage, error) {
	q, args := s.builder().
		Select(
			"purpose",
			"model",
			entsql.Count("*"),
			entsql.Sum("input_tokens"),
			entsql.Sum("output_tokens"),
			entsql.Avg("latency_ms"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
		).
		From(s.builder().Table(tableLLMRequests)).
		GroupBy("purpose", "model").
		OrderBy("purpose", "model").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u        LLMUsage
			in, outT sql.NullInt64
			latency  sql.NullFloat64
			failures sql.NullInt64
		)
		if err := rows.Scan(&u.Purpose, &u.Model, &u.Requests, &in, &outT, &latency, &failures); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.InputTokens = int(in.Int64)
		u.OutputTokens = int(outT.Int64)
		u.AvgLatencyMs = latency.Float64
		u.Failures = int(failures.Int64)
		out = append(out, u)
	}
	return out, rows.Err()
}
