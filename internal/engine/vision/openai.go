package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/law-makers/vision-researcher/internal/ratelimit"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultAPIURL    = "https://api.openai.com/v1"
	DefaultModel     = openai.GPT4oMini
	DefaultMaxTokens = 300
)

// OpenAIConfig configures the OpenAI-compatible vision client
type OpenAIConfig struct {
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// OpenAIClient sends one single-turn chat completion per image
type OpenAIClient struct {
	client    *openai.Client
	limiter   ratelimit.RateLimiter
	apiURL    string
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewOpenAIClient creates a vision client. httpClient and limiter may be nil.
func NewOpenAIClient(httpClient *http.Client, limiter ratelimit.RateLimiter, cfg OpenAIConfig) *OpenAIClient {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = apiURL
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client:    openai.NewClientWithConfig(clientCfg),
		limiter:   limiter,
		apiURL:    apiURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

// Model returns the model name sent with every request
func (c *OpenAIClient) Model() string {
	return c.model
}

// Describe sends the prompt and the JPEG as one user message and returns the
// completion text, which may be empty.
func (c *OpenAIClient) Describe(ctx context.Context, prompt string, jpegData []byte) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx, c.apiURL); err != nil {
		return "", fmt.Errorf("vision: rate limit wait: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: JPEGDataURL(jpegData)},
					},
				},
			},
		},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("vision: chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// JPEGDataURL returns data as an inline base64 data URL
func JPEGDataURL(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}
