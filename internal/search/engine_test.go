package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyperjump/serupa/internal/assets"
	"github.com/hyperjump/serupa/internal/embedding"
	"github.com/hyperjump/serupa/internal/models"
	"github.com/hyperjump/serupa/internal/preprocess"
	"github.com/hyperjump/serupa/internal/storage"
	"github.com/hyperjump/serupa/internal/tagger"
	"github.com/hyperjump/serupa/internal/vector"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (f *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return append([]float32(nil), f.vec...), nil
}

func (f *fixedEmbedder) Dimensions() int { return len(f.vec) }

func (f *fixedEmbedder) Close() error { return nil }

func newNormalizer(t *testing.T) *preprocess.Normalizer {
	t.Helper()
	n, err := preprocess.NewNormalizer()
	require.NoError(t, err)
	return n
}

func defaultRules(t *testing.T) *tagger.RuleTable {
	t.Helper()
	rules, err := tagger.DefaultRules()
	require.NoError(t, err)
	return rules
}

// scoredEngine builds an engine whose query vector is (1, 0) so that row i scores
// exactly scores[i].
func scoredEngine(t *testing.T, scores []float32) (*Engine, *fixedEmbedder) {
	t.Helper()
	vectors := make([][]float32, len(scores))
	records := make([]*models.Record, len(scores))
	for i, s := range scores {
		vectors[i] = []float32{s, 0}
		records[i] = &models.Record{DataPAID: int64(1000 + i), Title: fmt.Sprintf("PA %d", i)}
	}
	idx, err := vector.NewMemoryIndex(2, vectors)
	require.NoError(t, err)
	emb := &fixedEmbedder{vec: []float32{2, 0}}
	a := assets.New(emb, idx, storage.NewMemoryStore(records), defaultRules(t))
	return NewEngine(newNormalizer(t), a, WithLogger(zap.NewNop())), emb
}

func query(threshold float64) *models.SearchQuery {
	return &models.SearchQuery{
		Title:     "Aplikasi Mobile",
		Techs:     models.NewTechList([]any{"Kotlin"}),
		Threshold: &threshold,
	}
}

func TestSearch_ThresholdIsStrict(t *testing.T) {
	engine, _ := scoredEngine(t, []float32{0.5, 0.75, 0.25})

	resp, err := engine.Search(context.Background(), query(0.5))
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1001), resp.Results[0].DataPAID)
	assert.Equal(t, 75.0, resp.Results[0].SimilarityScore)
}

func TestSearch_ScoreEqualToThresholdIsDropped(t *testing.T) {
	engine, _ := scoredEngine(t, []float32{0.1, 0.3})

	resp, err := engine.Search(context.Background(), query(0.1))
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1001), resp.Results[0].DataPAID)
	assert.Equal(t, 30.0, resp.Results[0].SimilarityScore)
}

func TestSearch_CapsAtFiveSortedDescending(t *testing.T) {
	scores := make([]float32, 60)
	for i := range scores {
		scores[i] = 0.2 + float32(i%50)*0.01
	}
	engine, _ := scoredEngine(t, scores)

	resp, err := engine.Search(context.Background(), query(0.1))
	require.NoError(t, err)
	require.Len(t, resp.Results, MaxResults)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].SimilarityScore, resp.Results[i].SimilarityScore)
	}
	assert.Equal(t, 69.0, resp.Results[0].SimilarityScore)
	assert.Equal(t, int64(1049), resp.Results[0].DataPAID)
}

func TestSearch_DefaultThreshold(t *testing.T) {
	engine, _ := scoredEngine(t, []float32{0.0625, 0.125})
	q := query(0)
	q.Threshold = nil

	resp, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 12.5, resp.Results[0].SimilarityScore)
}

func TestSearch_NoMatchesReturnsEmptyLists(t *testing.T) {
	engine, _ := scoredEngine(t, []float32{0.05})
	q := query(0.1)
	q.Title = "sistem informasi perpustakaan"

	resp, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.DetectedPlatforms)
	assert.NotNil(t, resp.DetectedTechs)
}

func TestSearch_EmbedsNormalizedText(t *testing.T) {
	engine, emb := scoredEngine(t, []float32{0.9})
	q := query(0.1)
	q.Title = "Aplikasi Kasir"
	q.Description = "untuk toko, dibangun dengan Flutter"

	_, err := engine.Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, emb.texts, 1)
	assert.Equal(t, engine.normalizer.Normalize("Aplikasi Kasir untuk toko, dibangun dengan Flutter"), emb.texts[0])
	assert.NotContains(t, emb.texts[0], "toko,")
}

func TestSearch_Validation(t *testing.T) {
	engine, emb := scoredEngine(t, []float32{0.9})
	bad := 1.5
	tests := []struct {
		name string
		q    *models.SearchQuery
		want string
	}{
		{"empty text", &models.SearchQuery{Techs: models.NewTechList([]any{"kotlin"})}, MsgTextRequired},
		{"empty techs", &models.SearchQuery{Title: "Aplikasi"}, MsgTechsRequired},
		{"empty tech array", &models.SearchQuery{Title: "Aplikasi", Techs: models.NewTechList([]any{})}, MsgTechsRequired},
		{"empty tech string", &models.SearchQuery{Description: "x", Techs: models.NewTechList("")}, MsgTechsRequired},
		{"threshold out of range", &models.SearchQuery{Title: "Aplikasi", Techs: models.NewTechList("['kotlin']"), Threshold: &bad}, MsgThresholdRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Search(context.Background(), tt.q)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}
	assert.Empty(t, emb.texts, "validation must fail before embedding")
}

func TestSearch_ModelNotLoaded(t *testing.T) {
	engine := NewEngine(newNormalizer(t), nil)
	assert.False(t, engine.ModelLoaded())

	_, err := engine.Search(context.Background(), query(0.1))
	assert.ErrorIs(t, err, ErrModelNotLoaded)

	_, err = engine.Search(context.Background(), &models.SearchQuery{})
	assert.True(t, IsValidation(err), "validation runs before the model check")

	status, err := engine.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.ModelLoaded)
}

func TestSearch_InternalErrors(t *testing.T) {
	engine, emb := scoredEngine(t, []float32{0.9})
	emb.err = errors.New("model crashed")
	_, err := engine.Search(context.Background(), query(0.1))
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "model crashed")

	idx, err := vector.NewMemoryIndex(2, [][]float32{{0.3, 0}, {0.9, 0}})
	require.NoError(t, err)
	short := storage.NewMemoryStore([]*models.Record{{DataPAID: 1}})
	a := assets.New(&fixedEmbedder{vec: []float32{1, 0}}, idx, short, defaultRules(t))
	_, err = NewEngine(newNormalizer(t), a).Search(context.Background(), query(0.1))
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestSearch_EndToEnd(t *testing.T) {
	titles := []string{
		"aplikasi mobile kasir kotlin firebase",
		"website toko online laravel",
		"game edukasi unity",
	}
	ctx := context.Background()
	emb := embedding.NewMockEmbedder(64)
	norm := newNormalizer(t)
	vectors := make([][]float32, len(titles))
	records := make([]*models.Record, len(titles))
	for i, title := range titles {
		v, err := emb.Embed(ctx, norm.Normalize(title))
		require.NoError(t, err)
		vectors[i] = v
		records[i] = &models.Record{DataPAID: int64(i + 1), Title: title, Platform: "mobile"}
	}
	idx, err := vector.NewMemoryIndex(64, vectors)
	require.NoError(t, err)
	engine := NewEngine(norm, assets.New(emb, idx, storage.NewMemoryStore(records), defaultRules(t)))

	threshold := 0.1
	resp, err := engine.Search(ctx, &models.SearchQuery{
		Title:       "Aplikasi Mobile",
		Description: "dibangun dengan Kotlin dan Firebase",
		Techs:       models.NewTechList([]any{"Kotlin", "Firebase"}),
		Threshold:   &threshold,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.DetectedTechs, "kotlin")
	assert.Contains(t, resp.DetectedTechs, "firebase")
	assert.Contains(t, resp.DetectedPlatforms, "mobile")
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, int64(1), resp.Results[0].DataPAID)
	for _, r := range resp.Results {
		assert.Greater(t, r.SimilarityScore, 10.0)
		assert.LessOrEqual(t, r.SimilarityScore, 100.0)
	}
}

func TestEngine_Status(t *testing.T) {
	engine, _ := scoredEngine(t, []float32{0.1, 0.2, 0.3})
	status, err := engine.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.ModelLoaded)
	assert.Equal(t, 3, status.RecordCount)
	assert.Equal(t, 3, status.IndexSize)
	assert.Equal(t, "memory", status.IndexType)
	assert.Equal(t, 2, status.EmbeddingDimensions)
	assert.Equal(t, 6, status.Platforms)
}
