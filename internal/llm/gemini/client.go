// Package gemini calls the Gemini API directly through google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"google.golang.org/genai"

	"codeberg.org/snonux/medtrans/internal/llm"
)

const providerName = "gemini"

// Config holds the client settings.
type Config struct {
	APIKey string
	// BaseURL overrides the Gemini endpoint, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// Client implements llm.Completer for the Gemini API.
type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// Complete sends req.Prompt as a single user turn.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, ModelID(req.Model), genai.Text(req.Prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(req.Temperature),
		TopP:             genai.Ptr(req.TopP),
		FrequencyPenalty: genai.Ptr(req.FrequencyPenalty),
		PresencePenalty:  genai.Ptr(req.PresencePenalty),
	})
	if err != nil {
		return "", classify(err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

// ListModels returns the model ids available to the key, sorted.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var ids []string
	for model, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, classify(err)
		}
		ids = append(ids, strings.TrimPrefix(model.Name, "models/"))
	}
	sort.Strings(ids)
	return ids, nil
}

// ModelID converts an OpenRouter-style id such as
// "google/gemini-flash-1.5-8b" into the Gemini API's own naming.
func ModelID(model string) string {
	id := strings.TrimPrefix(model, "google/")
	if strings.HasPrefix(id, "gemini-flash-") {
		// OpenRouter writes "gemini-flash-1.5-8b", Gemini "gemini-1.5-flash-8b".
		rest := strings.TrimPrefix(id, "gemini-flash-")
		version, suffix, _ := strings.Cut(rest, "-")
		id = "gemini-" + version + "-flash"
		if suffix != "" {
			id += "-" + suffix
		}
	}
	return id
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED" {
			return &llm.RateLimitError{Provider: providerName, Err: err}
		}
		return &llm.APIError{Provider: providerName, StatusCode: apiErr.Code, Err: err}
	}
	return err
}
