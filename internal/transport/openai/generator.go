// Package openai implements answer generation over the OpenAI-compatible
// chat completions API, including Azure OpenAI deployments.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/askdex/internal/domain"
	"github.com/kailas-cloud/askdex/internal/metrics"
)

const healthCheckMaxTokens = 10

// Generator is an answer provider backed by the chat completions API.
type Generator struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// Config holds the generation provider settings. A non-empty AzureEndpoint
// selects the Azure client flavor, where Model names the deployment;
// otherwise BaseURL points at any OpenAI-compatible API.
type Config struct {
	APIKey          string
	BaseURL         string
	AzureEndpoint   string
	AzureAPIVersion string
	Model           string
	Provider        string
	Logger          *zap.Logger
}

// NewGenerator creates a chat completion provider. API key and model are
// required.
func NewGenerator(cfg *Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation api key required: %w", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("generation model required: %w", domain.ErrConfiguration)
	}

	var clientCfg openai.ClientConfig
	if cfg.AzureEndpoint != "" {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.AzureAPIVersion != "" {
			clientCfg.APIVersion = cfg.AzureAPIVersion
		}
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   logger,
	}, nil
}

// Generate implements domain.Generator with transport-level metrics around
// the completion call.
func (g *Generator) Generate(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "api_error").Inc()
		return domain.CompletionResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, g.model, "empty_response").Inc()
		return domain.CompletionResult{}, domain.NewGenerationError(errors.New("empty completion response"))
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, g.model, "total").Add(float64(usage.TotalTokens))
	}

	choice := resp.Choices[0]
	content := choice.Message.Content
	if content == "" {
		content = "No response generated"
	}
	model := resp.Model
	if model == "" {
		model = g.model
	}

	g.logger.Debug("completion generated",
		zap.String("model", model),
		zap.Int("total_tokens", usage.TotalTokens),
		zap.String("finish_reason", string(choice.FinishReason)),
		zap.Duration("duration", duration))

	return domain.CompletionResult{
		Content:      content,
		PromptTokens: usage.PromptTokens,
		TotalTokens:  usage.TotalTokens,
		Model:        model,
		Finished:     choice.FinishReason == openai.FinishReasonStop,
	}, nil
}

// HealthCheck issues a minimal completion to verify API availability.
func (g *Generator) HealthCheck(ctx context.Context) error {
	_, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Hello"},
		},
		MaxTokens: healthCheckMaxTokens,
	})
	if err != nil {
		return parseAPIError(err)
	}
	return nil
}

// parseAPIError classifies a completion failure: backend-returned HTTP
// errors become generation errors, everything else (DNS, timeouts,
// connection resets) is a network error.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return domain.NewGenerationError(fmt.Errorf("completion API error %d: %s",
			reqErr.HTTPStatusCode, detail))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewGenerationError(fmt.Errorf("completion API error %d: %s",
			apiErr.HTTPStatusCode, apiErr.Message))
	}

	return domain.NewNetworkError(domain.ServiceGeneration, err)
}

// extractDetail extracts the "detail" field from a JSON error body, the
// shape some OpenAI-compatible providers use for non-standard errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
