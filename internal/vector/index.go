// Package vector provides read-only nearest-neighbor indexes over L2-normalized vectors.
package vector

import (
	"context"
	"errors"
)

var (
	// ErrFAISSUnavailable is returned when FAISS support was not compiled in.
	ErrFAISSUnavailable = errors.New("FAISS not available: build with -tags=faiss and install the FAISS C library")
	// ErrDimensionMismatch is returned when a vector's length differs from the index dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Index answers top-k inner-product queries against a pre-built, immutable set of vectors.
// A result's Label is the row position of the vector, which is also the row of the matching
// record in the record table.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Size() int
	Dimensions() int
	Type() string
	Close() error
}

// Result is a single hit. Score is the inner product, equal to cosine similarity for
// normalized vectors.
type Result struct {
	Label int64
	Score float64
}
