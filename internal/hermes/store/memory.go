package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
)

// MemoryStore is an in-memory VectorStore. It backs tests and small local
// deployments where running Milvus is not worth it.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]*Chunk
	dimensions  map[string]int
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]*Chunk),
		dimensions:  make(map[string]int),
	}
}

// CreateCollection registers a collection.
func (s *MemoryStore) CreateCollection(_ context.Context, config *CollectionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[config.Name]; !ok {
		s.collections[config.Name] = nil
		s.dimensions[config.Name] = config.Dimension
	}
	return nil
}

// Insert stores chunks.
func (s *MemoryStore) Insert(_ context.Context, collection string, chunks []*Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collection]; !ok {
		return fmt.Errorf("unknown collection: %s", collection)
	}
	if dim := s.dimensions[collection]; dim > 0 {
		for _, chunk := range chunks {
			if len(chunk.Embedding) != dim {
				return fmt.Errorf("embedding dimension %d does not match collection dimension %d", len(chunk.Embedding), dim)
			}
		}
	}
	s.collections[collection] = append(s.collections[collection], chunks...)
	return nil
}

// Search scores every stored chunk by cosine similarity, mapped onto [0,1]
// certainty so identical vectors score 1 and opposite vectors score 0.
func (s *MemoryStore) Search(_ context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.collections[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}

	results := make([]*SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		similarity := textutil.CosineSimilarity(embedding, chunk.Embedding)
		results = append(results, &SearchResult{
			Content:  chunk.Content,
			Score:    textutil.NormalizeCosineSimilarity(similarity),
			Metadata: chunk.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.collections[collection]
	if !ok {
		return 0, fmt.Errorf("unknown collection: %s", collection)
	}
	return int64(len(chunks)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(_ context.Context) error {
	return nil
}
