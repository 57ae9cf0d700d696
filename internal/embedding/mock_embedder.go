package embedding

import (
	"context"
	"math"
	"strings"
)

// MockEmbedder is a deterministic bag-of-words embedder for tests and development.
// Each word contributes a fixed pseudo-random direction, so texts sharing words score
// higher under cosine similarity than unrelated texts.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns a mock embedder of the given dimensions (384 when not positive).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed sums one unit-scale vector per word and L2-normalizes the result. Empty text
// yields the zero vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float64, e.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := HashString(word)
		for i := range emb {
			emb[i] += math.Sin(float64(h%100003) * float64(i+1))
		}
	}

	var sum float64
	for _, v := range emb {
		sum += v * v
	}
	out := make([]float32, e.dimensions)
	if sum == 0 {
		return out, nil
	}
	norm := 1 / math.Sqrt(sum)
	for i, v := range emb {
		out[i] = float32(v * norm)
	}
	return out, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}
