package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/metrics"
)

// OpenAIConfig holds the settings of an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings API (OpenAI, a local
// text-embeddings-inference server, or any gateway speaking the same protocol).
type OpenAIEmbedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// NewOpenAIEmbedder creates a remote embedder. An empty BaseURL keeps the client default.
func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     logger,
	}
}

// Embed requests one embedding and checks its length against the configured dimensions.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	model := string(e.model)
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderOpenAI, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderOpenAI, model, "api_error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderOpenAI, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderOpenAI, model, "empty_response").Inc()
		return nil, ErrEmptyEmbedding
	}
	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderOpenAI, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderOpenAI, model, "dimension_mismatch").Inc()
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(vec), e.dimensions)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderOpenAI, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderOpenAI, model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderOpenAI, model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(ProviderOpenAI, model, "total").Add(float64(resp.Usage.TotalTokens))
	}
	e.logger.Debug("Embedding received",
		zap.String("model", model),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration))
	return vec, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (e *OpenAIEmbedder) Close() error {
	return nil
}

// parseAPIError extracts a readable message from an API failure.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("embedding API error %d: %s", reqErr.HTTPStatusCode, detail)
		}
		return fmt.Errorf("embedding API error %d: %w", reqErr.HTTPStatusCode, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("embedding request failed: %w", err)
}

// extractDetail returns the "detail" field of a JSON error body, used by
// text-embeddings-inference style servers.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
