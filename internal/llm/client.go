package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/jonathan/song-scout/internal/logger"
	"github.com/jonathan/song-scout/internal/metrics"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/jonathan/song-scout/internal/llm Client

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderOpenAI, "":
		return NewOpenAIClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, false)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, jsonMode bool) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(c.config.Temperature)
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		observe(ctx, ProviderGemini, modelName, start, usage{}, err)
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	var u usage
	if resp.UsageMetadata != nil {
		u = usage{
			prompt:     int(resp.UsageMetadata.PromptTokenCount),
			completion: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	text, err := extractTextFromResponse(resp)
	observe(ctx, ProviderGemini, modelName, start, u, err)
	return text, err
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}

type usage struct {
	prompt     int
	completion int
}

// observe records request metrics and a debug line for one provider call.
func observe(ctx context.Context, provider Provider, model string, start time.Time, u usage, err error) {
	duration := time.Since(start)
	log := logger.FromContext(ctx).With(
		zap.String("provider", string(provider)),
		zap.String("model", model),
		zap.Duration("duration", duration),
	)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(string(provider), model, "error").Inc()
		log.Debug("llm request failed", zap.Error(err))
		return
	}

	metrics.LLMRequestsTotal.WithLabelValues(string(provider), model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(string(provider), model).Observe(duration.Seconds())
	if u.prompt > 0 {
		metrics.LLMTokensTotal.WithLabelValues(string(provider), model, "prompt").Add(float64(u.prompt))
	}
	if u.completion > 0 {
		metrics.LLMTokensTotal.WithLabelValues(string(provider), model, "completion").Add(float64(u.completion))
	}
	log.Debug("llm request done",
		zap.Int("prompt_tokens", u.prompt),
		zap.Int("completion_tokens", u.completion),
	)
}
