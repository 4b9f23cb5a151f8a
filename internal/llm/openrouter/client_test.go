package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"codeberg.org/snonux/medtrans/internal/llm"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestComplete_Success(t *testing.T) {
	var gotBody map[string]any
	var gotHeaders http.Header

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  止痛药 || 止痛 || 缓解疼痛 \n"},"finish_reason":"stop"}]}`))
	})

	client := NewClient(Config{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		SiteURL:  "https://example.org",
		SiteName: "medtrans",
	})

	got, err := client.Complete(context.Background(), llm.Request{
		Model:            "google/gemini-flash-1.5-8b",
		Prompt:           "translate",
		Temperature:      0.3,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
		PresencePenalty:  0.1,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "止痛药 || 止痛 || 缓解疼痛" {
		t.Errorf("Complete() = %q", got)
	}

	if gotHeaders.Get("Authorization") != "Bearer test-key" {
		t.Errorf("Authorization header = %q", gotHeaders.Get("Authorization"))
	}
	if gotHeaders.Get("HTTP-Referer") != "https://example.org" {
		t.Errorf("HTTP-Referer header = %q", gotHeaders.Get("HTTP-Referer"))
	}
	if gotHeaders.Get("X-Title") != "medtrans" {
		t.Errorf("X-Title header = %q", gotHeaders.Get("X-Title"))
	}

	if gotBody["model"] != "google/gemini-flash-1.5-8b" {
		t.Errorf("model = %v", gotBody["model"])
	}
	messages, ok := gotBody["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected exactly one message, got %v", gotBody["messages"])
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "translate" {
		t.Errorf("unexpected message %v", msg)
	}
	for key, want := range map[string]float64{
		"temperature":       0.3,
		"top_p":             0.9,
		"frequency_penalty": 0.1,
		"presence_penalty":  0.1,
	} {
		got, _ := gotBody[key].(float64)
		if diff := got - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("%s = %v, want %v", key, got, want)
		}
	}
}

func TestComplete_NoSiteHeaders(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("HTTP-Referer") != "" || r.Header.Get("X-Title") != "" {
			t.Error("site headers should be omitted when not configured")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"a||b||c"}}]}`))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	if _, err := client.Complete(context.Background(), llm.Request{Model: "m", Prompt: "p"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestComplete_ErrorClasses(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantRateLimit bool
		wantAPI       bool
	}{
		{
			name:          "rate limit json",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"message":"Rate limit exceeded","code":429}}`,
			wantRateLimit: true,
		},
		{
			name:          "rate limit plain text",
			status:        http.StatusTooManyRequests,
			body:          `slow down`,
			wantRateLimit: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `{"error":{"message":"upstream failed","code":500}}`,
			wantAPI: true,
		},
		{
			name:    "bad gateway plain text",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			wantAPI: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
			_, err := client.Complete(context.Background(), llm.Request{Model: "m", Prompt: "p"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := llm.IsRateLimit(err); got != tt.wantRateLimit {
				t.Errorf("IsRateLimit() = %v, want %v (err: %v)", got, tt.wantRateLimit, err)
			}
			if got := llm.IsAPIError(err); got != tt.wantAPI {
				t.Errorf("IsAPIError() = %v, want %v (err: %v)", got, tt.wantAPI, err)
			}
		})
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), llm.Request{Model: "m", Prompt: "p"})
	if err != llm.ErrEmptyResponse {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestComplete_NoAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Complete(context.Background(), llm.Request{}); err == nil {
		t.Error("Expected error for missing API key")
	}
}

func TestListModels(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[{"id":"openai/gpt-4o-mini"},{"id":"google/gemini-flash-1.5-8b"}]}`))
	})

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL + "/"})
	got, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	want := []string{"google/gemini-flash-1.5-8b", "openai/gpt-4o-mini"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ListModels() = %v, want %v", got, want)
	}
}

func TestComplete_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENROUTER_API_KEY not set")
	}

	client := NewClient(Config{APIKey: apiKey})
	got, err := client.Complete(context.Background(), llm.Request{
		Model:       "google/gemini-flash-1.5-8b",
		Prompt:      "Reply with the single word: ok",
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	if got == "" {
		t.Error("Got empty completion")
	}
	t.Logf("Completion: %s", got)
}
