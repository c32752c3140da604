// Package groq implements generation.Gateway on Groq's OpenAI-compatible
// chat completions API using the sashabaranov/go-openai client.
package groq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/deckmind/internal/config"
	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/phrazzld/deckmind/internal/metrics"
	"github.com/phrazzld/deckmind/internal/platform/logger"
	"github.com/sashabaranov/go-openai"
)

// Provider is the metrics label of this gateway.
const Provider = "groq"

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

const systemPrompt = "You are a friendly study assistant. Keep answers short, accurate and encouraging."

// Gateway sends prompts to a Groq-hosted chat model.
type Gateway struct {
	client      *openai.Client
	model       string
	temperature float32
	retry       generation.RetryPolicy
	logger      *slog.Logger
}

var _ generation.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway from the Groq settings of cfg.
func NewGateway(cfg config.LLMConfig, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("%w: groq API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GroqModel == "" {
		return nil, fmt.Errorf("%w: groq model cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := openai.DefaultConfig(cfg.GroqAPIKey)
	clientConfig.BaseURL = DefaultBaseURL
	if cfg.GroqBaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.GroqBaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &Gateway{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.GroqModel,
		temperature: float32(cfg.Temperature),
		retry: generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryDelay(),
		},
		logger: logger.With(slog.String("component", "groq_gateway")),
	}, nil
}

// Send implements generation.Gateway.
func (g *Gateway) Send(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	start := time.Now()

	text, err := g.retry.Do(ctx, log, func(ctx context.Context) (string, error) {
		return g.complete(ctx, prompt)
	})
	metrics.ObserveGenerativeCall(Provider, start, err)
	if err != nil {
		log.ErrorContext(ctx, "groq call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", err
	}
	return text, nil
}

func (g *Gateway) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", generation.ErrEmptyResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", generation.ErrContentBlocked
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return "", fmt.Errorf("%w: choice has no content", generation.ErrEmptyResponse)
	}
	return choice.Message.Content, nil
}

func classifyError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		return fmt.Errorf("%w: %w", generation.ErrTransport, err)
	}

	kind := generation.ErrRequestRejected
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		kind = generation.ErrTransientFailure
	}
	return fmt.Errorf("%w: status %d: %v", kind, status, err)
}
