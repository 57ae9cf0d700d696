// Package assets loads the read-only model state the search engine needs: the embedder,
// the nearest-neighbor index, the record table and the tagger rule table.
package assets

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/config"
	"github.com/hyperjump/serupa/internal/embedding"
	"github.com/hyperjump/serupa/internal/metrics"
	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/tagger"
	"github.com/hyperjump/serupa/internal/vector"
)

// ErrModelDirMissing is returned when the configured model directory does not exist.
var ErrModelDirMissing = errors.New("model directory not found")

// StartupError reports which asset failed to load. The server keeps running without
// assets when it sees one.
type StartupError struct {
	Asset string
	Path  string
	Err   error
}

func (e *StartupError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load %s: %v", e.Asset, e.Err)
	}
	return fmt.Sprintf("failed to load %s from %s: %v", e.Asset, e.Path, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Assets is built once at startup and shared read-only by all requests.
type Assets struct {
	Embedder embedding.Embedder
	Index    vector.Index
	Records  storage.RecordStore
	Rules    *tagger.RuleTable
	Provider string
	ModelDir string
}

// New assembles assets from already opened parts. rules must not be nil.
func New(embedder embedding.Embedder, index vector.Index, records storage.RecordStore, rules *tagger.RuleTable) *Assets {
	return &Assets{
		Embedder: embedder,
		Index:    index,
		Records:  records,
		Rules:    rules,
		Provider: embedding.ProviderMock,
	}
}

// Load opens every asset named by cfg. On failure everything opened so far is closed and
// a *StartupError is returned.
func Load(cfg *config.Config, logger *zap.Logger) (*Assets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Assets{Provider: cfg.Embedding.Provider, ModelDir: cfg.Models.Dir}

	rules, err := tagger.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, &StartupError{Asset: "rule table", Path: cfg.Rules.Path, Err: err}
	}
	a.Rules = rules

	info, err := os.Stat(cfg.Models.Dir)
	if err != nil || !info.IsDir() {
		return nil, &StartupError{Asset: "models", Path: cfg.Models.Dir, Err: ErrModelDirMissing}
	}

	embedder, err := NewEmbedder(cfg.Embedding, logger)
	if err != nil {
		return nil, &StartupError{Asset: "embedder", Path: cfg.Embedding.ModelPath, Err: err}
	}
	a.Embedder = embedder

	index, err := vector.Open(cfg.Models.IndexType, cfg.Models.IndexPath(), embedder.Dimensions())
	if err != nil {
		_ = a.Close()
		return nil, &StartupError{Asset: "index", Path: cfg.Models.IndexPath(), Err: err}
	}
	a.Index = index

	records, err := storage.OpenSQLiteReadOnly(cfg.Models.RecordsPath())
	if err != nil {
		_ = a.Close()
		return nil, &StartupError{Asset: "record table", Path: cfg.Models.RecordsPath(), Err: err}
	}
	a.Records = records

	logger.Info("Model assets loaded",
		zap.String("provider", a.Provider),
		zap.String("index_type", index.Type()),
		zap.Int("index_size", index.Size()),
		zap.Int("dimensions", index.Dimensions()),
		zap.Int("platforms", len(rules.Platforms())),
	)
	return a, nil
}

// NewEmbedder builds the configured embedding provider wrapped in an LRU cache.
func NewEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (embedding.Embedder, error) {
	metrics.RegisterEmbeddingMetrics()

	var inner embedding.Embedder
	switch cfg.Provider {
	case embedding.ProviderONNX:
		tok, err := embedding.NewPretrainedTokenizer(cfg.TokenizerPath, embedding.XLMRobertaPadID)
		if err != nil {
			return nil, err
		}
		e, err := embedding.NewONNXEmbedder(embedding.ONNXConfig{
			Tokenizer:   tok,
			ModelPath:   cfg.ModelPath,
			LibraryPath: cfg.LibraryPath,
			Dimensions:  cfg.Dimensions,
			MaxTokens:   cfg.MaxTokens,
			OutputName:  cfg.OutputName,
		})
		if err != nil {
			return nil, err
		}
		inner = e
	case embedding.ProviderOpenAI:
		inner = embedding.NewOpenAIEmbedder(embedding.OpenAIConfig{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
	case embedding.ProviderMock:
		inner = embedding.NewMockEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	if cfg.CacheSize <= 0 {
		return inner, nil
	}
	cached, err := embedding.NewCachedEmbedder(inner, cfg.CacheSize)
	if err != nil {
		_ = inner.Close()
		return nil, err
	}
	return cached, nil
}

// Close releases every opened asset and returns the first error.
func (a *Assets) Close() error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if a.Records != nil {
		keep(a.Records.Close())
	}
	if a.Index != nil {
		keep(a.Index.Close())
	}
	if a.Embedder != nil {
		keep(a.Embedder.Close())
	}
	return first
}
