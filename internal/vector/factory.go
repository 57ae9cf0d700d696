package vector

import "fmt"

// IndexType names an index implementation.
type IndexType string

const (
	// IndexTypeFAISS reads an index written by faiss.write_index. Requires -tags=faiss.
	IndexTypeFAISS IndexType = "faiss"
	// IndexTypeMemory reads the portable flat vector file and searches by brute force.
	IndexTypeMemory IndexType = "memory"
)

// Open loads the index file at path. When dims is positive the index dimension must match it.
func Open(indexType, path string, dims int) (Index, error) {
	var (
		idx Index
		err error
	)
	switch IndexType(indexType) {
	case IndexTypeFAISS, "":
		idx, err = OpenFAISSIndex(path)
	case IndexTypeMemory:
		idx, err = LoadMemoryIndex(path)
	default:
		return nil, fmt.Errorf("unknown index type: %s (supported: faiss, memory)", indexType)
	}
	if err != nil {
		return nil, err
	}
	if dims > 0 && idx.Dimensions() != dims {
		_ = idx.Close()
		return nil, fmt.Errorf("%w: index has %d, embedder produces %d", ErrDimensionMismatch, idx.Dimensions(), dims)
	}
	return idx, nil
}

// IsFAISSAvailable reports whether FAISS support is compiled in.
func IsFAISSAvailable() bool {
	return faissCompiled
}
