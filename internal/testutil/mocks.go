package testutil

import (
	"context"
	"sync"
	"time"

	"codeberg.org/snonux/medtrans/internal/llm"
)

// MockResponse is one scripted answer of MockCompleter.
type MockResponse struct {
	Text string
	Err  error
}

// MockCompleter replays Responses in order. Once they run out the last
// response repeats.
type MockCompleter struct {
	ProviderName string
	Responses    []MockResponse
	Models       []string
	ModelsErr    error

	mu    sync.Mutex
	Calls []llm.Request
}

// Complete records the request and returns the next scripted response.
func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Responses) == 0 {
		return "", llm.ErrEmptyResponse
	}

	idx := len(m.Calls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	resp := m.Responses[idx]
	return resp.Text, resp.Err
}

// Name returns ProviderName, defaulting to "mock".
func (m *MockCompleter) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// ListModels returns the scripted model list.
func (m *MockCompleter) ListModels(ctx context.Context) ([]string, error) {
	return m.Models, m.ModelsErr
}

// CallCount returns how many requests reached the mock.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// RecordingSleeper records requested waits instead of sleeping.
type RecordingSleeper struct {
	mu    sync.Mutex
	Waits []time.Duration
}

// Sleep records d and returns immediately.
func (s *RecordingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Waits = append(s.Waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

// CountingThrottle counts pacing requests without waiting.
type CountingThrottle struct {
	mu    sync.Mutex
	Count int
}

// Wait increments Count.
func (c *CountingThrottle) Wait(ctx context.Context) error {
	c.mu.Lock()
	c.Count++
	c.mu.Unlock()
	return ctx.Err()
}
