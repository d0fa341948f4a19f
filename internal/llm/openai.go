package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI and OpenAI-compatible gateways.
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a chat completions client against config.BaseURL.
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier, false)
}

// GenerateJSON asks for a JSON object response and strips any code fences around it.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.complete(ctx, prompt, tier, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, tier ModelTier, jsonMode bool) (string, error) {
	model := c.config.GetModel(tier)
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		err = parseAPIError(err)
		observe(ctx, ProviderOpenAI, model, start, usage{}, err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		err = fmt.Errorf("no choices in response")
		observe(ctx, ProviderOpenAI, model, start, usage{}, err)
		return "", err
	}

	observe(ctx, ProviderOpenAI, model, start, usage{
		prompt:     resp.Usage.PromptTokens,
		completion: resp.Usage.CompletionTokens,
	}, nil)

	return resp.Choices[0].Message.Content, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (c *OpenAIClient) Close() error {
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("openai API error %d: %s: %w", reqErr.HTTPStatusCode, detail, err)
		}
		return fmt.Errorf("openai API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	return fmt.Errorf("openai request failed: %w", err)
}

// extractDetail reads the "detail" field some gateways put in error bodies.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
