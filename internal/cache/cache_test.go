package cache

import (
	"os"
	"testing"
	"time"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"bad-scheme", "http://localhost:6379", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestContextKey(t *testing.T) {
	if got := ContextKey("phys-101"); got != "cogniquiz:context:phys-101" {
		t.Fatalf("ContextKey() = %q", got)
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	_, err := New(t.Context(), "redis://localhost:59999", 0)
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

// Runs against a live server when COGNIQUIZ_REDIS_URL is set.
func TestContextRoundTrip(t *testing.T) {
	url := os.Getenv("COGNIQUIZ_REDIS_URL")
	if url == "" {
		t.Skip("set COGNIQUIZ_REDIS_URL to run Redis tests")
	}
	ctx := t.Context()

	c, err := New(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })

	course := "cache-test-" + time.Now().Format("150405.000")
	if _, ok, err := c.GetContext(ctx, course); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.SetContext(ctx, course, "para one\n\npara two"); err != nil {
		t.Fatalf("SetContext() error = %v", err)
	}
	text, ok, err := c.GetContext(ctx, course)
	if err != nil || !ok || text != "para one\n\npara two" {
		t.Fatalf("GetContext() = %q, %v, %v", text, ok, err)
	}
	ttl, err := c.Client.TTL(ctx, ContextKey(course)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL %v (err %v)", ttl, err)
	}
	if err := c.InvalidateContext(ctx, course); err != nil {
		t.Fatalf("InvalidateContext() error = %v", err)
	}
	if _, ok, _ := c.GetContext(ctx, course); ok {
		t.Fatal("expected miss after invalidation")
	}
}
