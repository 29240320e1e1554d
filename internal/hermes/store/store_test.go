package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/hermes/store"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		metric   string
		score    float64
		expected float64
	}{
		{name: "l2 small distance", metric: "l2", score: 0.2, expected: 0.8},
		{name: "l2 zero distance", metric: "l2", score: 0, expected: 1},
		{name: "l2 large distance", metric: "l2", score: 1.5, expected: 0},
		{name: "cosine passthrough", metric: "cosine", score: 0.9, expected: 0.9},
		{name: "cosine clamp high", metric: "cosine", score: 1.2, expected: 1},
		{name: "cosine clamp low", metric: "cosine", score: -0.1, expected: 0},
		{name: "ip passthrough", metric: "ip", score: 0.4, expected: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, store.NormalizeScore(tt.metric, tt.score), 1e-9)
		})
	}
}

func newCollection(t *testing.T, s *store.MemoryStore, name string, dim int) {
	t.Helper()
	require.NoError(t, s.CreateCollection(context.Background(), &store.CollectionConfig{
		Name:      name,
		Dimension: dim,
	}))
}

func TestMemoryStoreInsertAndCount(t *testing.T) {
	s := store.NewMemoryStore()
	newCollection(t, s, "regs", 3)

	err := s.Insert(context.Background(), "regs", []*store.Chunk{
		{Content: "α", Embedding: []float32{1, 0, 0}},
		{Content: "β", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	count, err := s.Count(context.Background(), "regs")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMemoryStoreRejectsWrongDimension(t *testing.T) {
	s := store.NewMemoryStore()
	newCollection(t, s, "regs", 3)

	err := s.Insert(context.Background(), "regs", []*store.Chunk{
		{Content: "α", Embedding: []float32{1, 0}},
	})
	assert.Error(t, err)
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	s := store.NewMemoryStore()

	err := s.Insert(context.Background(), "absent", nil)
	assert.Error(t, err)

	_, err = s.Search(context.Background(), "absent", []float32{1}, 1)
	assert.Error(t, err)

	_, err = s.Count(context.Background(), "absent")
	assert.Error(t, err)
}

func TestMemoryStoreSearchOrdersByScore(t *testing.T) {
	s := store.NewMemoryStore()
	newCollection(t, s, "regs", 2)

	err := s.Insert(context.Background(), "regs", []*store.Chunk{
		{Content: "orthogonal", Embedding: []float32{0, 1}, Metadata: map[string]any{"source": "a.txt"}},
		{Content: "aligned", Embedding: []float32{1, 0}, Metadata: map[string]any{"source": "b.txt"}},
		{Content: "opposite", Embedding: []float32{-1, 0}},
	})
	require.NoError(t, err)

	results, err := s.Search(context.Background(), "regs", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "aligned", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "b.txt", results[0].Metadata["source"])

	// Certainty mapping: orthogonal vectors land at 0.5, the opposite vector
	// at 0 is cut by topK.
	assert.Equal(t, "orthogonal", results[1].Content)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestMemoryStoreSearchEmptyCollection(t *testing.T) {
	s := store.NewMemoryStore()
	newCollection(t, s, "regs", 2)

	results, err := s.Search(context.Background(), "regs", []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
