// Package store provides vector storage for regulation chunks.
package store

import (
	"context"
)

// Chunk is one regulation chunk ready for indexing.
type Chunk struct {
	// Content is the chunk text.
	Content string
	// Embedding is the chunk vector.
	Embedding []float32
	// Metadata carries at least the "source" identifier.
	Metadata map[string]any
}

// SearchResult is one retrieval hit. Score is normalized to [0,1] where 1 is
// maximal relevance, regardless of the backend's native metric.
type SearchResult struct {
	Content  string
	Score    float64
	Metadata map[string]any
}

// CollectionConfig describes a chunk collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is a human-readable description.
	Description string
	// Dimension is the embedding dimension.
	Dimension int
}

// VectorStore is the storage interface the retrieval pipeline depends on.
// Implementations normalize scores before returning them.
type VectorStore interface {
	// CreateCollection creates the collection if it does not exist.
	CreateCollection(ctx context.Context, config *CollectionConfig) error

	// Insert stores chunks in bulk.
	Insert(ctx context.Context, collection string, chunks []*Chunk) error

	// Search returns the topK nearest chunks ordered by descending normalized
	// score.
	Search(ctx context.Context, collection string, embedding []float32, topK int) ([]*SearchResult, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context, collection string) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// NormalizeScore maps a backend-native score onto [0,1]. Distance-style
// metrics become max(0, 1-distance); similarity-style scores are clamped.
func NormalizeScore(metric string, score float64) float64 {
	switch metric {
	case "l2":
		if normalized := 1 - score; normalized > 0 {
			return normalized
		}
		return 0
	default:
		// cosine / ip similarity passthrough
		if score < 0 {
			return 0
		}
		if score > 1 {
			return 1
		}
		return score
	}
}
