package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/teleperson/demo-generator/internal/config"
	"github.com/teleperson/demo-generator/internal/errs"
	"github.com/teleperson/demo-generator/internal/metrics"
)

// PerplexityClient talks to Perplexity's OpenAI-compatible chat completions
// endpoint. The SDK's automatic retries are disabled: every call is a single
// round trip.
type PerplexityClient struct {
	apiKey string
	client openai.Client
	logger *zap.Logger
}

// NewPerplexityClient builds a client from cfg. A missing API key is not an
// error here; Complete reports it before touching the network.
func NewPerplexityClient(cfg *config.Config, logger *zap.Logger) *PerplexityClient {
	baseURL := cfg.Perplexity.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultPerplexityBaseURL
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.Perplexity.APIKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.ClientTimeout}),
	)
	return &PerplexityClient{
		apiKey: cfg.Perplexity.APIKey,
		client: client,
		logger: logger,
	}
}

func (p *PerplexityClient) Complete(ctx context.Context, messages []Message, params Params) (string, error) {
	if config.IsPlaceholder(p.apiKey) {
		return "", errs.New(errs.CredentialsNotConfigured, "PERPLEXITY_API_KEY is not configured. Please add it to your .env file.")
	}

	req := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(params.Model),
		Messages: toParams(messages),
	}
	if params.Temperature != nil {
		req.Temperature = openai.Float(*params.Temperature)
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(int64(params.MaxTokens))
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	metrics.UpstreamDuration.WithLabelValues("perplexity", params.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", errs.New(errs.UpstreamFailure, "Unexpected response structure from Perplexity API")
	}

	text := resp.Choices[0].Message.Content
	p.logger.Debug("perplexity completion received",
		zap.String("model", params.Model),
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

func toParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default: // user, and any role the API does not know
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func classify(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return errs.Wrap(errs.UpstreamFailure, err, "Perplexity API request failed")
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.New(errs.AuthFailure, "Invalid Perplexity API key. Please check your PERPLEXITY_API_KEY in .env file.")
	case http.StatusTooManyRequests:
		return errs.New(errs.UpstreamFailure, "Perplexity API rate limit exceeded. Please try again later.")
	default:
		return errs.Wrap(errs.UpstreamFailure, apiErr, "Perplexity API error (%d)", apiErr.StatusCode)
	}
}
