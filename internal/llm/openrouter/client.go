// Package openrouter talks to OpenRouter's OpenAI-compatible chat API.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/medtrans/internal/llm"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

const providerName = "openrouter"

// Config holds the client settings.
type Config struct {
	APIKey  string
	BaseURL string
	// SiteURL and SiteName are sent as HTTP-Referer and X-Title so the
	// calling application shows up in OpenRouter's rankings.
	SiteURL  string
	SiteName string
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client implements llm.Completer on top of go-openai.
type Client struct {
	apiKey string
	client *openai.Client
}

// NewClient creates an OpenRouter client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(baseURL, "/")
	clientCfg.HTTPClient = &headerDoer{
		doer:     httpClient,
		siteURL:  cfg.SiteURL,
		siteName: cfg.SiteName,
	}

	return &Client{
		apiKey: cfg.APIKey,
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// Complete sends req as a single user message.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OpenRouter API key not found")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ListModels returns the ids of every model the key can use, sorted.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	models, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, classify(err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

// classify maps go-openai errors onto the llm error classes.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &llm.RateLimitError{Provider: providerName, Err: err}
		}
		return &llm.APIError{Provider: providerName, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &llm.RateLimitError{Provider: providerName, Err: err}
		}
		return &llm.APIError{Provider: providerName, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return err
}

// headerDoer adds OpenRouter's optional attribution headers.
type headerDoer struct {
	doer     openai.HTTPDoer
	siteURL  string
	siteName string
}

func (h *headerDoer) Do(req *http.Request) (*http.Response, error) {
	if h.siteURL != "" {
		req.Header.Set("HTTP-Referer", h.siteURL)
	}
	if h.siteName != "" {
		req.Header.Set("X-Title", h.siteName)
	}
	return h.doer.Do(req)
}
