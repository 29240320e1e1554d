package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/hermes/pkg/component/milvus"
)

// MilvusStore implements VectorStore on Milvus.
type MilvusStore struct {
	client *milvus.Client
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore creates a Milvus-backed store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// CreateCollection creates the chunk collection.
func (s *MilvusStore) CreateCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "source", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "content", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	}
	return s.client.CreateCollection(ctx, schema)
}

// Insert stores chunks in bulk.
func (s *MilvusStore) Insert(ctx context.Context, collection string, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"source":  make([]any, len(chunks)),
		"content": make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		embeddings[i] = chunk.Embedding
		metadata["content"][i] = chunk.Content
		source := ""
		if v, ok := chunk.Metadata["source"].(string); ok {
			source = v
		}
		metadata["source"][i] = source
	}

	_, err := s.client.Insert(ctx, collection, &milvus.InsertData{
		Embeddings: embeddings,
		Metadata:   metadata,
	})
	if err != nil {
		return fmt.Errorf("failed to insert into milvus: %w", err)
	}
	return nil
}

// Search returns the topK nearest chunks with normalized scores.
func (s *MilvusStore) Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error) {
	results, err := s.client.Search(ctx, collection, embedding, topK, []string{"source", "content"})
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	metric := s.client.Metric()
	searchResults := make([]*SearchResult, len(results))
	for i, r := range results {
		content, _ := r.Metadata["content"].(string)
		source, _ := r.Metadata["source"].(string)
		searchResults[i] = &SearchResult{
			Content: content,
			Score:   NormalizeScore(metric, float64(r.Score)),
			Metadata: map[string]any{
				"source": source,
			},
		}
	}

	return searchResults, nil
}

// Count returns the number of stored chunks.
func (s *MilvusStore) Count(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close releases the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}
