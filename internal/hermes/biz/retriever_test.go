package biz_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/hermes/biz"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/rerank"
)

// reversingReranker reverses the candidate order with fresh scores.
type reversingReranker struct{}

func (reversingReranker) Rerank(_ context.Context, _ string, documents []string, topN int) ([]rerank.Result, error) {
	results := make([]rerank.Result, 0, len(documents))
	for i := len(documents) - 1; i >= 0; i-- {
		results = append(results, rerank.Result{Index: i, Score: 0.95 - 0.1*float64(len(results))})
	}
	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}
	return results, nil
}

func (reversingReranker) Enabled() bool { return true }
func (reversingReranker) Name() string  { return "reversing" }

func TestRetrieveParallelLists(t *testing.T) {
	vs := &stubStore{results: []*store.SearchResult{
		{Content: "α", Score: 0.9, Metadata: map[string]any{"source": "a.txt"}},
		{Content: "β", Score: 0.7, Metadata: map[string]any{"source": "b.txt"}},
		{Content: "γ", Score: 0.5, Metadata: map[string]any{"source": "c.txt"}},
	}}
	r := biz.NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, vs, rerank.Disabled{}, "chunks", 6, 3)

	got, err := r.Retrieve(context.Background(), "ερώτηση")
	require.NoError(t, err)

	require.Len(t, got.Texts, 3)
	require.Len(t, got.Scores, 3)
	require.Len(t, got.Metas, 3)
	assert.Equal(t, []string{"α", "β", "γ"}, got.Texts)
	assert.Equal(t, 0.9, got.MaxScore())
	for i := 1; i < len(got.Scores); i++ {
		assert.LessOrEqual(t, got.Scores[i], got.Scores[i-1])
	}
}

func TestRetrieveRerankReplacesOrderAndScores(t *testing.T) {
	vs := &stubStore{results: []*store.SearchResult{
		{Content: "α", Score: 0.9, Metadata: map[string]any{"source": "a.txt"}},
		{Content: "β", Score: 0.7, Metadata: map[string]any{"source": "b.txt"}},
		{Content: "γ", Score: 0.5, Metadata: map[string]any{"source": "c.txt"}},
		{Content: "δ", Score: 0.4, Metadata: map[string]any{"source": "d.txt"}},
	}}
	r := biz.NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, vs, reversingReranker{}, "chunks", 6, 2)

	got, err := r.Retrieve(context.Background(), "ερώτηση")
	require.NoError(t, err)

	// Truncated to the rerank top-k, in reranked order with reranked scores.
	require.Len(t, got.Texts, 2)
	assert.Equal(t, []string{"δ", "γ"}, got.Texts)
	require.Len(t, got.Scores, 2)
	assert.InDelta(t, 0.95, got.Scores[0], 1e-9)
	assert.InDelta(t, 0.85, got.Scores[1], 1e-9)
	assert.Equal(t, "d.txt", got.Metas[0]["source"])
}

func TestRetrievalMaxScoreIgnoresOrder(t *testing.T) {
	// A remote reranker may return unsorted results; the confidence check
	// must still see the true maximum.
	r := &biz.Retrieval{Scores: []float64{0.2, 0.9, 0.5}}
	assert.InDelta(t, 0.9, r.MaxScore(), 1e-9)
}

func TestRetrieveEmpty(t *testing.T) {
	vs := &stubStore{}
	r := biz.NewRetriever(&fixedEmbedder{vector: []float32{1, 0}}, vs, rerank.Disabled{}, "chunks", 6, 3)

	got, err := r.Retrieve(context.Background(), "ερώτηση")
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Equal(t, 0.0, got.MaxScore())
}
