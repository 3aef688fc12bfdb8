package recommend

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/poiesic/recommendit/ai/mock"
	"github.com/poiesic/recommendit/core"
	"github.com/poiesic/recommendit/storage"
	"github.com/poiesic/recommendit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	text string
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context, raw string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.text != "" {
		return s.text, nil
	}
	return raw, nil
}

type recordingMonitor struct {
	noopMonitor
	started  string
	resolved string
	fromURL  bool
	matches  int
	finished []core.QueryResult
}

func (m *recordingMonitor) Start(query string, _ int) { m.started = query }

func (m *recordingMonitor) AfterResolve(text string, fromURL bool) {
	m.resolved = text
	m.fromURL = fromURL
}

func (m *recordingMonitor) AfterQuery(matches []*core.Match) { m.matches = len(matches) }

func (m *recordingMonitor) Finish(results []core.QueryResult) { m.finished = results }

func newCollection(t *testing.T) storage.Collection {
	t.Helper()
	coll, err := badger.NewMemoryCollection("assessments")
	require.NoError(t, err)
	t.Cleanup(func() { coll.Close() })
	return coll
}

// seed indexes one entry per description using the keyword embedding.
func seed(t *testing.T, coll storage.Collection, rows map[core.ID][2]string) {
	t.Helper()
	entries := make([]*core.IndexedEntry, 0, len(rows))
	for id, row := range rows {
		record := &core.CatalogRecord{
			ID:            id,
			Name:          row[0],
			Description:   row[1],
			TestType:      "K",
			Duration:      "30 minutes",
			RemoteTesting: "Yes",
			AdaptiveIRT:   "No",
			URL:           "https://example.com/" + id.String(),
		}
		entries = append(entries, core.NewIndexedEntry(record, mock.KeywordVector(record.Description, mock.DefaultDimension)))
	}
	require.NoError(t, coll.Upsert(context.Background(), entries...))
}

func newRecommender(t *testing.T, coll storage.Collection, resolver QueryResolver) *Recommender {
	t.Helper()
	provider := mock.NewMockProviderWithEmbedder(mock.NewKeywordEmbedder(), "all-minilm")
	r, err := NewRecommender(coll, provider, resolver)
	require.NoError(t, err)
	return r
}

func TestNewRecommender(t *testing.T) {
	coll := newCollection(t)
	provider := mock.NewMockProvider()
	resolver := &stubResolver{}

	t.Run("valid configuration", func(t *testing.T) {
		r, err := NewRecommender(coll, provider, resolver)
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		r, err := NewRecommender(coll, provider, resolver, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("with custom logger", func(t *testing.T) {
		r, err := NewRecommender(coll, provider, resolver, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, r)
	})

	t.Run("nil collection", func(t *testing.T) {
		_, err := NewRecommender(nil, provider, resolver)
		assert.Equal(t, ErrCollectionRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewRecommender(coll, nil, resolver)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("nil resolver", func(t *testing.T) {
		_, err := NewRecommender(coll, provider, nil)
		assert.Equal(t, ErrResolverRequired, err)
	})
}

func TestRecommend_SingleRowScenario(t *testing.T) {
	coll := newCollection(t)
	seed(t, coll, map[core.ID][2]string{
		0: {"Verify G+", "numerical reasoning test"},
	})
	r := newRecommender(t, coll, &stubResolver{})

	results, err := r.Recommend(context.Background(), "I need a cognitive ability test", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ResultMatch, results[0].Kind)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "Verify G+", results[0].Metadata.Name)
}

func TestRecommend_RanksByDistance(t *testing.T) {
	coll := newCollection(t)
	seed(t, coll, map[core.ID][2]string{
		0: {"Sales Personality", "personality questionnaire for sales roles"},
		1: {"Java 8", "java programming knowledge test for developers"},
		2: {"Numerical Reasoning", "numerical reasoning with charts and tables"},
		3: {"Python", "python programming knowledge test"},
	})
	r := newRecommender(t, coll, &stubResolver{})

	results, err := r.Recommend(context.Background(), "java programming developers", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Java 8", results[0].Metadata.Name)
	for i, res := range results {
		assert.Equal(t, i+1, res.Rank)
		assert.False(t, res.IsSentinel())
		if i > 0 {
			assert.GreaterOrEqual(t, res.Distance, results[i-1].Distance)
		}
	}
}

func TestRecommend_FewerEntriesThanTopK(t *testing.T) {
	coll := newCollection(t)
	seed(t, coll, map[core.ID][2]string{
		0: {"A", "alpha"},
		1: {"B", "beta"},
	})
	r := newRecommender(t, coll, &stubResolver{})

	results, err := r.Recommend(context.Background(), "alpha", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestRecommend_EmptyIndex(t *testing.T) {
	r := newRecommender(t, newCollection(t), &stubResolver{})

	results, err := r.Recommend(context.Background(), "anything", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ResultNoMatches, results[0].Kind)
	assert.Equal(t, MessageNoMatches, results[0].Message)
	assert.True(t, results[0].IsSentinel())
}

func TestRecommend_ExtractionFailed(t *testing.T) {
	coll := newCollection(t)
	seed(t, coll, map[core.ID][2]string{0: {"A", "alpha"}})
	provider := mock.NewMockProviderWithEmbedder(mock.NewKeywordEmbedder(), "all-minilm")
	r, err := NewRecommender(coll, provider, &stubResolver{err: core.ErrExtractionFailed})
	require.NoError(t, err)

	results, err := r.Recommend(context.Background(), "https://jobs.example.com/1", 3)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ResultExtractionFailed, results[0].Kind)
	assert.Equal(t, MessageExtractionFailed, results[0].Message)
	assert.Zero(t, provider.GetMockEmbedder().CallCount(), "nothing is embedded after a failed extraction")
}

func TestRecommend_ResolverFault(t *testing.T) {
	r := newRecommender(t, newCollection(t), &stubResolver{err: errors.New("boom")})

	_, err := r.Recommend(context.Background(), "x", 1)
	assert.Error(t, err)
}

func TestRecommend_EmbeddingFailure(t *testing.T) {
	coll := newCollection(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("model unavailable")
	}
	r, err := NewRecommender(coll, mock.NewMockProviderWithEmbedder(embedder, "all-minilm"), &stubResolver{})
	require.NoError(t, err)

	_, err = r.Recommend(context.Background(), "x", 1)
	assert.ErrorContains(t, err, "model unavailable")
}

func TestRecommend_DimensionMismatch(t *testing.T) {
	coll := newCollection(t)
	require.NoError(t, coll.Upsert(context.Background(), &core.IndexedEntry{ID: 0, Vector: []float32{1, 0, 0}}))
	r := newRecommender(t, coll, &stubResolver{})

	_, err := r.Recommend(context.Background(), "x", 1)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestRecommend_InvalidTopK(t *testing.T) {
	r := newRecommender(t, newCollection(t), &stubResolver{})

	for _, k := range []int{0, -1} {
		_, err := r.Recommend(context.Background(), "x", k)
		assert.ErrorIs(t, err, core.ErrInvalidTopK)
	}
}

func TestRecommendWithMonitor(t *testing.T) {
	coll := newCollection(t)
	seed(t, coll, map[core.ID][2]string{0: {"A", "data analyst"}, 1: {"B", "sales"}})
	r := newRecommender(t, coll, &stubResolver{text: "data analyst"})

	monitor := &recordingMonitor{}
	results, err := r.RecommendWithMonitor(context.Background(), "see https://jobs.example.com/1", 2, monitor)
	require.NoError(t, err)

	assert.Equal(t, "see https://jobs.example.com/1", monitor.started)
	assert.Equal(t, "data analyst", monitor.resolved)
	assert.True(t, monitor.fromURL)
	assert.Equal(t, 2, monitor.matches)
	assert.Equal(t, results, monitor.finished)
}

func TestCheckManifest(t *testing.T) {
	ctx := context.Background()

	t.Run("missing manifest", func(t *testing.T) {
		r := newRecommender(t, newCollection(t), &stubResolver{})
		m, err := r.CheckManifest(ctx)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("returns manifest", func(t *testing.T) {
		coll := newCollection(t)
		want := &core.Manifest{
			Collection: "assessments",
			ModelID:    "other-model",
			Dimension:  384,
			Metric:     core.MetricCosine,
			CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, coll.SetManifest(ctx, want))

		r := newRecommender(t, coll, &stubResolver{})
		m, err := r.CheckManifest(ctx)
		require.NoError(t, err)
		assert.Equal(t, "other-model", m.ModelID)
	})
}
