package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/loader"
	"github.com/kart-io/hermes/internal/pkg/rag/splitter"
	"github.com/kart-io/hermes/pkg/llm"
)

// insertBatchSize bounds how many chunks are embedded and inserted per
// round trip.
const insertBatchSize = 1000

// Indexer loads regulation documents, splits them into chunks, embeds the
// chunks and stores them in the vector store.
type Indexer struct {
	embedder     llm.EmbeddingProvider
	store        store.VectorStore
	splitter     *splitter.TitleSplitter
	collection   string
	embeddingDim int
}

// NewIndexer creates an Indexer.
func NewIndexer(embedder llm.EmbeddingProvider, vs store.VectorStore, split *splitter.TitleSplitter, collection string, embeddingDim int) *Indexer {
	return &Indexer{
		embedder:     embedder,
		store:        vs,
		splitter:     split,
		collection:   collection,
		embeddingDim: embeddingDim,
	}
}

// IndexDirectory indexes every supported document under dir. It returns the
// number of documents and chunks indexed.
func (i *Indexer) IndexDirectory(ctx context.Context, dir string) (int, int, error) {
	docs, err := loader.LoadDir(dir)
	if err != nil {
		metrics.Get().RecordIndexing(0, 0, err)
		return 0, 0, fmt.Errorf("load directory: %w", err)
	}
	if len(docs) == 0 {
		return 0, 0, nil
	}
	chunks, err := i.indexDocuments(ctx, docs)
	metrics.Get().RecordIndexing(len(docs), chunks, err)
	return len(docs), chunks, err
}

// IndexFile indexes a single document. It returns the number of chunks
// indexed.
func (i *Indexer) IndexFile(ctx context.Context, path string) (int, error) {
	doc, err := loader.Load(path)
	if err != nil {
		metrics.Get().RecordIndexing(0, 0, err)
		return 0, fmt.Errorf("load document: %w", err)
	}
	chunks, err := i.indexDocuments(ctx, []*loader.Document{doc})
	metrics.Get().RecordIndexing(1, chunks, err)
	return chunks, err
}

func (i *Indexer) indexDocuments(ctx context.Context, docs []*loader.Document) (int, error) {
	config := &store.CollectionConfig{
		Name:        i.collection,
		Description: "Regulation chunks",
		Dimension:   i.embeddingDim,
	}
	if err := i.store.CreateCollection(ctx, config); err != nil {
		return 0, fmt.Errorf("create collection: %w", err)
	}

	texts := make([]string, len(docs))
	metas := make([]map[string]any, len(docs))
	for idx, doc := range docs {
		texts[idx] = doc.Text
		metas[idx] = doc.Metadata
	}
	chunks := i.splitter.SplitDocuments(texts, metas)
	logger.Infow("split documents", "documents", len(docs), "chunks", len(chunks))

	indexed := 0
	for start := 0; start < len(chunks); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := i.insertBatch(ctx, chunks[start:end]); err != nil {
			return indexed, err
		}
		indexed += end - start
	}
	return indexed, nil
}

func (i *Indexer) insertBatch(ctx context.Context, batch []splitter.Chunk) error {
	texts := make([]string, len(batch))
	for idx, c := range batch {
		texts[idx] = c.Text
	}

	embeddings, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embeddings), len(batch))
	}

	rows := make([]*store.Chunk, len(batch))
	for idx, c := range batch {
		rows[idx] = &store.Chunk{
			Content:   c.Text,
			Embedding: embeddings[idx],
			Metadata:  c.Metadata,
		}
	}
	if err := i.store.Insert(ctx, i.collection, rows); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}
