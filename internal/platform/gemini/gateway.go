package gemini

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
	"google.golang.org/genai"
)

// Provider is the metrics label of this gateway.
const Provider = "gemini"

var blockedCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// Gateway sends prompts to a Gemini model.
type Gateway struct {
	client       *genai.Client
	model        string
	temperature  float32
	jsonResponse bool
	retry        generation.RetryPolicy
	logger       *slog.Logger
}

var _ generation.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway that asks for JSON replies. The client is
// created once and shared by every call.
func NewGateway(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	if cfg.GeminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.GeminiBaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Gateway{
		client:       client,
		model:        cfg.GeminiModel,
		temperature:  float32(cfg.Temperature),
		jsonResponse: true,
		retry: generation.RetryPolicy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryDelay(),
		},
		logger: logger.With(slog.String("component", "gemini_gateway")),
	}, nil
}

// PlainText returns a gateway sharing the same client that asks for free
// text instead of JSON, for conversational replies.
func (g *Gateway) PlainText() *Gateway {
	cp := *g
	cp.jsonResponse = false
	return &cp
}

// Send implements generation.Gateway.
func (g *Gateway) Send(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)
	start := time.Now()

	text, err := g.retry.Do(ctx, log, func(ctx context.Context) (string, error) {
		return g.generate(ctx, prompt)
	})
	metrics.ObserveGenerativeCall(Provider, start, err)
	if err != nil {
		log.ErrorContext(ctx, "gemini call failed",
			slog.String("model", g.model),
			slog.String("error", err.Error()))
		return "", err
	}

	log.DebugContext(ctx, "gemini call succeeded",
		slog.String("model", g.model),
		slog.Int("response_length", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

func (g *Gateway) requestConfig() *genai.GenerateContentConfig {
	safety := make([]*genai.SafetySetting, 0, len(blockedCategories))
	for _, category := range blockedCategories {
		safety = append(safety, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		})
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(g.temperature),
		SafetySettings: safety,
	}
	if g.jsonResponse {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

func (g *Gateway) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.requestConfig())
	if err != nil {
		return "", classifyError(err)
	}
	return extractText(resp)
}

// classifyError maps client errors onto the gateway error kinds.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		kind := generation.ErrRequestRejected
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			kind = generation.ErrTransientFailure
		}
		return fmt.Errorf("%w: status %d: %s", kind, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %w", generation.ErrTransport, err)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrEmptyResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", generation.ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", generation.ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: candidate has no content", generation.ErrEmptyResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("%w: candidate has no text", generation.ErrEmptyResponse)
	}
	return b.String(), nil
}
