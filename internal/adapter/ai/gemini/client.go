// Package gemini implements the generative model gateway on top of the
// google.golang.org/genai SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/raisa-rms/raisa-backend/internal/adapter/ai/tokencount"
	"github.com/raisa-rms/raisa-backend/internal/adapter/observability"
	"github.com/raisa-rms/raisa-backend/internal/domain"
	"github.com/raisa-rms/raisa-backend/internal/service/ratelimiter"
)

// LimiterKey is the shared bucket identifier used to pace calls to the
// provider across server and worker processes.
const LimiterKey = "gemini"

const (
	embeddingModel = "gemini-embedding-001"
	requestTimeout = 90 * time.Second
)

// Client calls the Gemini API. The underlying SDK client is created lazily on
// the first call so that a missing API key surfaces as a per-request
// configuration error instead of failing process startup.
type Client struct {
	apiKey  string
	model   string
	limiter ratelimiter.Limiter

	mu     sync.Mutex
	client *genai.Client
}

// New builds a Gemini client. limiter may be nil, in which case calls are
// not paced.
func New(apiKey, model string, limiter ratelimiter.Limiter) *Client {
	return &Client{apiKey: apiKey, model: model, limiter: limiter}
}

func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", domain.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create gemini client: %v", domain.ErrConfiguration, err)
	}
	c.client = client
	return c.client, nil
}

func (c *Client) allow(ctx context.Context, operation string) error {
	if c.limiter == nil {
		return nil
	}
	allowed, retryAfter, err := c.limiter.Allow(ctx, LimiterKey, 1)
	if err != nil {
		// Fail open: the limiter already logged the Redis error.
		return nil
	}
	if !allowed {
		observability.AIRequestsTotal.WithLabelValues(operation, "rate_limited").Inc()
		return fmt.Errorf("%w: gemini budget exhausted, retry after %s", domain.ErrRateLimited, retryAfter.Round(time.Millisecond))
	}
	return nil
}

// GenerateJSON sends prompt to the configured model and returns the raw text
// of the first candidate. Calls are never retried; a failed call fails the
// caller's pipeline.
func (c *Client) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	const operation = "generate"
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", domain.ErrInvalidArgument)
	}
	if err := c.allow(ctx, operation); err != nil {
		return "", err
	}
	client, err := c.sdk(ctx)
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(operation, "config_error").Inc()
		return "", err
	}

	observability.AIPromptTokens.WithLabelValues(operation).Observe(float64(tokencount.Count(prompt)))

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := client.Models.GenerateContent(
		timeoutCtx,
		c.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(float32(0.1))},
	)
	observability.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(operation, "error").Inc()
		slog.ErrorContext(ctx, "gemini generate failed", slog.String("model", c.model), slog.Any("error", err))
		return "", fmt.Errorf("%w: gemini generate: %v", domain.ErrProvider, err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		observability.AIRequestsTotal.WithLabelValues(operation, "empty").Inc()
		return "", fmt.Errorf("%w: gemini returned an empty response", domain.ErrProvider)
	}

	observability.AIRequestsTotal.WithLabelValues(operation, "success").Inc()
	return text, nil
}

// Embed returns the embedding vector for text, used for candidate semantic
// search. Oversized inputs are truncated to keep the request within the
// embedding model's limits.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const operation = "embed"
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty text for embedding", domain.ErrInvalidArgument)
	}
	if len(trimmed) > 10000 {
		trimmed = trimmed[:10000]
	}
	if err := c.allow(ctx, operation); err != nil {
		return nil, err
	}
	client, err := c.sdk(ctx)
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(operation, "config_error").Inc()
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	start := time.Now()
	result, err := client.Models.EmbedContent(
		timeoutCtx,
		embeddingModel,
		[]*genai.Content{genai.NewContentFromText(trimmed, genai.RoleUser)},
		nil,
	)
	observability.AIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues(operation, "error").Inc()
		slog.ErrorContext(ctx, "gemini embed failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: gemini embed: %v", domain.ErrProvider, err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		observability.AIRequestsTotal.WithLabelValues(operation, "empty").Inc()
		return nil, fmt.Errorf("%w: gemini returned an empty embedding", domain.ErrProvider)
	}

	observability.AIRequestsTotal.WithLabelValues(operation, "success").Inc()
	return result.Embeddings[0].Values, nil
}
