package llm

import (
	"context"
	"sync"
)

// MockResponse is one scripted reply: either Content or Err.
type MockResponse struct {
	Content string
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and records every
// request it receives in Calls. Once the script runs out it fails with
// *ErrProviderUnavailable, unless it was built by AlwaysFail.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	sticky *MockResponse
	Calls  []Request
}

// NewMockProvider scripts the given replies.
func NewMockProvider(replies ...MockResponse) *MockProvider {
	return &MockProvider{script: replies}
}

// AlwaysFail returns a provider that fails every call with err.
func AlwaysFail(err error) *MockProvider {
	return &MockProvider{sticky: &MockResponse{Err: err}}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, req)

	var next MockResponse
	switch {
	case len(m.script) > 0:
		next, m.script = m.script[0], m.script[1:]
	case m.sticky != nil:
		next = *m.sticky
	default:
		return nil, &ErrProviderUnavailable{}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
