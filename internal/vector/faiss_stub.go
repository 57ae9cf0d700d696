//go:build !faiss || !cgo
// +build !faiss !cgo

package vector

import "context"

const faissCompiled = false

// FAISSIndex is a placeholder when the faiss build tag is not set.
type FAISSIndex struct{}

// OpenFAISSIndex always fails without FAISS.
func OpenFAISSIndex(string) (*FAISSIndex, error) {
	return nil, ErrFAISSUnavailable
}

// Search always fails without FAISS.
func (f *FAISSIndex) Search(context.Context, []float32, int) ([]*Result, error) {
	return nil, ErrFAISSUnavailable
}

// Size returns 0 without FAISS.
func (f *FAISSIndex) Size() int { return 0 }

// Dimensions returns 0 without FAISS.
func (f *FAISSIndex) Dimensions() int { return 0 }

// Close is a no-op without FAISS.
func (f *FAISSIndex) Close() error { return nil }

// Type returns the index type identifier.
func (f *FAISSIndex) Type() string {
	return string(IndexTypeFAISS)
}
