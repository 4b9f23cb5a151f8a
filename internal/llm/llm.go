package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("no completion returned")

// Request is a single-prompt chat completion.
type Request struct {
	Model            string
	Prompt           string
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
}

// Completer sends one user-role prompt and returns the model's text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// ModelLister is implemented by providers that can enumerate their models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// RateLimitError signals that the provider rejected the call because of
// request-rate limits.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limit: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// APIError is any other error reported by the provider's API.
type APIError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// IsRateLimit reports whether err is, or wraps, a *RateLimitError.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsAPIError reports whether err is, or wraps, an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
