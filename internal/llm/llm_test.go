package llm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/medtrans/internal/llm"
	"codeberg.org/snonux/medtrans/internal/testutil"
)

func TestErrorClassification(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name          string
		err           error
		wantRateLimit bool
		wantAPI       bool
	}{
		{"plain", base, false, false},
		{"rate limit", &llm.RateLimitError{Provider: "x", Err: base}, true, false},
		{"wrapped rate limit", fmt.Errorf("call: %w", &llm.RateLimitError{Provider: "x", Err: base}), true, false},
		{"api", &llm.APIError{Provider: "x", StatusCode: 500, Err: base}, false, true},
		{"wrapped api", fmt.Errorf("call: %w", &llm.APIError{Provider: "x", Err: base}), false, true},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := llm.IsRateLimit(tt.err); got != tt.wantRateLimit {
				t.Errorf("IsRateLimit() = %v, want %v", got, tt.wantRateLimit)
			}
			if got := llm.IsAPIError(tt.err); got != tt.wantAPI {
				t.Errorf("IsAPIError() = %v, want %v", got, tt.wantAPI)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("boom")
	if !errors.Is(&llm.RateLimitError{Err: base}, base) {
		t.Error("RateLimitError should unwrap to its cause")
	}
	if !errors.Is(&llm.APIError{Err: base}, base) {
		t.Error("APIError should unwrap to its cause")
	}

	msg := (&llm.APIError{Provider: "openrouter", StatusCode: 502, Err: base}).Error()
	if msg != "openrouter API error (status 502): boom" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestNewBreaker_Disabled(t *testing.T) {
	mock := &testutil.MockCompleter{}
	if got := llm.NewBreaker(mock, llm.BreakerSettings{}); got != llm.Completer(mock) {
		t.Error("zero threshold should return the completer unchanged")
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []testutil.MockResponse{
			{Err: &llm.APIError{Provider: "mock", StatusCode: 500, Err: errors.New("down")}},
		},
	}
	completer := llm.NewBreaker(mock, llm.BreakerSettings{Threshold: 2, Cooldown: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := completer.Complete(ctx, llm.Request{}); !llm.IsAPIError(err) {
			t.Fatalf("call %d: expected API error, got %v", i+1, err)
		}
	}

	_, err := completer.Complete(ctx, llm.Request{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open-state error, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("open breaker should not reach the provider, calls = %d", mock.CallCount())
	}
	if state := completer.(*llm.Breaker).State(); state != gobreaker.StateOpen {
		t.Errorf("state = %v, want open", state)
	}
}

func TestBreaker_RateLimitDoesNotTrip(t *testing.T) {
	mock := &testutil.MockCompleter{
		Responses: []testutil.MockResponse{
			{Err: &llm.RateLimitError{Provider: "mock", Err: errors.New("slow down")}},
			{Err: &llm.RateLimitError{Provider: "mock", Err: errors.New("slow down")}},
			{Err: &llm.RateLimitError{Provider: "mock", Err: errors.New("slow down")}},
			{Text: "ok"},
		},
	}
	completer := llm.NewBreaker(mock, llm.BreakerSettings{Threshold: 1, Cooldown: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := completer.Complete(ctx, llm.Request{}); !llm.IsRateLimit(err) {
			t.Fatalf("call %d: expected rate limit, got %v", i+1, err)
		}
	}
	got, err := completer.Complete(ctx, llm.Request{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != "ok" {
		t.Errorf("Complete() = %q, want ok", got)
	}
	if completer.Name() != "mock" {
		t.Errorf("Name() = %q, want mock", completer.Name())
	}
}
