// Package embedding turns normalized query text into dense vectors.
package embedding

import (
	"context"
	"errors"
)

// Provider names accepted in configuration.
const (
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// ErrEmptyEmbedding is returned when a provider answers without a vector.
var ErrEmptyEmbedding = errors.New("embedding provider returned no vector")

// ErrONNXUnavailable is returned by NewONNXEmbedder in builds without CGO.
var ErrONNXUnavailable = errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")

// Embedder produces vector embeddings for text. Implementations are safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
