//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/serupa/internal/metrics"
)

// ONNXEmbedder runs a sentence-transformers model exported to ONNX. It requires CGO
// and the onnxruntime shared library. One pre-allocated tensor set is shared by all
// callers, so inference is serialized.
type ONNXEmbedder struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	meanPool   bool
	model      string
	tokenizer  Tokenizer
	inputs     map[string]*ort.Tensor[int64]
	output     *ort.Tensor[float32]
	mu         sync.Mutex
}

// NewONNXEmbedder loads the model at cfg.ModelPath. The runtime environment is
// initialized on first use.
func NewONNXEmbedder(cfg ONNXConfig) (*ONNXEmbedder, error) {
	cfg = cfg.withDefaults()
	if cfg.Tokenizer == nil {
		return nil, ErrTokenizerRequired
	}
	if !ort.IsInitialized() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	e := &ONNXEmbedder{
		dimensions: cfg.Dimensions,
		maxTokens:  cfg.MaxTokens,
		meanPool:   cfg.MeanPool,
		model:      filepath.Base(cfg.ModelPath),
		tokenizer:  cfg.Tokenizer,
		inputs:     make(map[string]*ort.Tensor[int64], len(cfg.InputNames)),
	}

	inputShape := ort.NewShape(1, int64(cfg.MaxTokens))
	inputs := make([]ort.ArbitraryTensor, 0, len(cfg.InputNames))
	for _, name := range cfg.InputNames {
		t, err := ort.NewTensor(inputShape, make([]int64, cfg.MaxTokens))
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("failed to create %s tensor: %w", name, err)
		}
		e.inputs[name] = t
		inputs = append(inputs, t)
	}

	outputShape := ort.NewShape(1, int64(cfg.Dimensions))
	outputLen := cfg.Dimensions
	if cfg.MeanPool {
		outputShape = ort.NewShape(1, int64(cfg.MaxTokens), int64(cfg.Dimensions))
		outputLen = cfg.MaxTokens * cfg.Dimensions
	}
	output, err := ort.NewTensor(outputShape, make([]float32, outputLen))
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	e.output = output

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		cfg.InputNames,
		[]string{cfg.OutputName},
		inputs,
		[]ort.ArbitraryTensor{output},
		nil,
	)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	e.session = session
	return e, nil
}

// Embed runs one inference. The returned vector is not normalized.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inputIDs, attentionMask, tokenTypeIDs, err := e.tokenizer.Tokenize(text, e.maxTokens)
	if err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderONNX, e.model, "tokenize").Inc()
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	for name, t := range e.inputs {
		switch name {
		case "input_ids":
			copy(t.GetData(), inputIDs)
		case "attention_mask":
			copy(t.GetData(), attentionMask)
		case "token_type_ids":
			copy(t.GetData(), tokenTypeIDs)
		}
	}

	if err := e.session.Run(); err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderONNX, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(ProviderONNX, e.model, "inference").Inc()
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := e.output.GetData()
	embedding := make([]float32, e.dimensions)
	if e.meanPool {
		meanPool(embedding, out, attentionMask)
	} else {
		copy(embedding, out[:e.dimensions])
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(ProviderONNX, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(ProviderONNX, e.model).Observe(time.Since(start).Seconds())
	return embedding, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the session and tensors.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	for name, t := range e.inputs {
		_ = t.Destroy()
		delete(e.inputs, name)
	}
	if e.output != nil {
		_ = e.output.Destroy()
		e.output = nil
	}
	return err
}
