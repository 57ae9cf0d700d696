// Package search answers similarity queries against the historical project corpus.
package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/metrics"
	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/preprocess"
	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/tagger"
	"github.com/hyperjump/serupa/pkg/utils"
)

const (
	// CandidateCount is the number of nearest neighbors fetched per query.
	CandidateCount = 50
	// MaxResults caps the number of results returned.
	MaxResults = 5
)

// Engine runs the search pipeline: normalize, tag, embed, look up, filter and rank.
type Engine struct {
	normalizer *preprocess.Normalizer
	tagger     *tagger.Tagger
	assets     *assets.Assets
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a search engine. a may be nil when the model assets failed to load;
// Search then answers ErrModelNotLoaded after validating the query. A non-nil a must
// carry its rule table.
func NewEngine(normalizer *preprocess.Normalizer, a *assets.Assets, opts ...Option) *Engine {
	metrics.RegisterSearchMetrics()
	e := &Engine{
		normalizer: normalizer,
		assets:     a,
		logger:     zap.NewNop(),
	}
	if a != nil {
		e.tagger = tagger.New(a.Rules)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelLoaded reports whether the engine can serve searches.
func (e *Engine) ModelLoaded() bool {
	return e.assets != nil
}

// Validate checks a query before any processing.
func Validate(q *models.SearchQuery) error {
	if q.Title == "" && q.Description == "" {
		return &ValidationError{Message: MsgTextRequired}
	}
	if q.Techs.Empty() {
		return &ValidationError{Message: MsgTechsRequired}
	}
	if q.Threshold != nil {
		t := *q.Threshold
		if math.IsNaN(t) || t < 0 || t > 1 {
			return &ValidationError{Message: MsgThresholdRange}
		}
	}
	return nil
}

// Search returns the projects most similar to q together with the platforms and
// technologies mentioned in its title and description.
func (e *Engine) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := Validate(q); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}
	if e.assets == nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		return nil, ErrModelNotLoaded
	}

	resp, err := e.search(ctx, q, uuid.NewString())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(resp.Results)))
	for _, p := range resp.DetectedPlatforms {
		metrics.DetectedPlatformsTotal.WithLabelValues(p).Inc()
	}
	return resp, nil
}

func (e *Engine) search(ctx context.Context, q *models.SearchQuery, searchID string) (*models.SearchResponse, error) {
	start := time.Now()
	raw := q.Text()
	normalized := e.normalizer.Normalize(raw)
	techs := preprocess.NormalizeTechList(q.Techs.Value())
	detection := e.tagger.Detect(raw)

	vec, err := e.assets.Embedder.Embed(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	candidates, err := e.assets.Index.Search(ctx, utils.NormalizeL2(vec), CandidateCount)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	records, err := e.assets.Records.GetByRows(ctx, candidateRows(candidates))
	if err != nil {
		return nil, fmt.Errorf("resolve records: %w", err)
	}
	results, err := rankResults(candidates, records, q.ThresholdOrDefault(), MaxResults)
	if err != nil {
		return nil, fmt.Errorf("resolve records: %w", err)
	}

	e.logger.Debug("search completed",
		zap.String("search_id", searchID),
		zap.String("platform", q.Platform),
		zap.Int("normalized_len", len(normalized)),
		zap.String("techs", techs),
		zap.Strings("tech_platforms", e.tagger.PlatformsForTechs(techs)),
		zap.Int("candidates", len(candidates)),
		zap.Int("kept", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return &models.SearchResponse{
		Results:           results,
		DetectedPlatforms: detection.Platforms,
		DetectedTechs:     detection.Techs,
	}, nil
}

// Status describes the loaded assets. It reports ModelLoaded false and zero counts when
// the engine runs without assets.
func (e *Engine) Status(ctx context.Context) (*models.StatusResponse, error) {
	if e.assets == nil {
		return &models.StatusResponse{}, nil
	}
	count, err := e.assets.Records.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	status := &models.StatusResponse{
		ModelLoaded:         true,
		RecordCount:         count,
		IndexSize:           e.assets.Index.Size(),
		IndexType:           e.assets.Index.Type(),
		EmbeddingProvider:   e.assets.Provider,
		EmbeddingDimensions: e.assets.Embedder.Dimensions(),
	}
	status.Platforms = len(e.tagger.Rules().Platforms())
	if e.assets.ModelDir != "" {
		bytes, err := storage.DiskUsageBytes(e.assets.ModelDir)
		if err != nil {
			e.logger.Warn("status: disk usage failed", zap.Error(err))
		}
		status.ModelDirBytes = bytes
	}
	return status, nil
}
