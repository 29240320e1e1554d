package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/rerank"
	"github.com/kart-io/hermes/pkg/llm"
)

// Retrieval holds ranked retrieval hits as three parallel lists ordered by
// descending score.
type Retrieval struct {
	Texts  []string
	Scores []float64
	Metas  []map[string]any
}

// Empty reports whether the retrieval produced no hits.
func (r *Retrieval) Empty() bool { return len(r.Texts) == 0 }

// MaxScore returns the highest score, or 0 for an empty retrieval. The lists
// are normally sorted descending, but a remote reranker is not trusted to
// honor that.
func (r *Retrieval) MaxScore() float64 {
	max := 0.0
	for _, s := range r.Scores {
		if s > max {
			max = s
		}
	}
	return max
}

// Retriever embeds a question and searches the vector store, optionally
// rescoring the candidates with a reranker.
type Retriever struct {
	embedder   llm.EmbeddingProvider
	store      store.VectorStore
	reranker   rerank.Reranker
	collection string
	topK       int
	rerankTopK int
}

// NewRetriever creates a Retriever. reranker must not be nil; pass
// rerank.Disabled{} to skip rescoring.
func NewRetriever(embedder llm.EmbeddingProvider, vs store.VectorStore, reranker rerank.Reranker, collection string, topK, rerankTopK int) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      vs,
		reranker:   reranker,
		collection: collection,
		topK:       topK,
		rerankTopK: rerankTopK,
	}
}

// Retrieve returns the top chunks for the question. When the reranker is
// enabled its scores fully replace the retrieval scores and the result is
// truncated to the reranker's top-k. Failures propagate without retry.
func (r *Retriever) Retrieve(ctx context.Context, question string) (*Retrieval, error) {
	start := time.Now()

	embedding, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		metrics.Get().RecordRetrieval(time.Since(start), err)
		return nil, fmt.Errorf("%w: embed query: %v", ErrRetrieval, err)
	}

	hits, err := r.store.Search(ctx, r.collection, embedding, r.topK)
	if err != nil {
		metrics.Get().RecordRetrieval(time.Since(start), err)
		return nil, fmt.Errorf("%w: search: %v", ErrRetrieval, err)
	}

	result := &Retrieval{
		Texts:  make([]string, 0, len(hits)),
		Scores: make([]float64, 0, len(hits)),
		Metas:  make([]map[string]any, 0, len(hits)),
	}
	for _, hit := range hits {
		result.Texts = append(result.Texts, hit.Content)
		result.Scores = append(result.Scores, hit.Score)
		result.Metas = append(result.Metas, hit.Metadata)
	}

	if r.reranker.Enabled() && !result.Empty() {
		result = r.rescore(ctx, question, result)
	}

	metrics.Get().RecordRetrieval(time.Since(start), nil)
	return result, nil
}

// rescore reorders hits by reranker score. A reranker failure keeps the
// original retrieval order.
func (r *Retriever) rescore(ctx context.Context, question string, in *Retrieval) *Retrieval {
	ranked, err := r.reranker.Rerank(ctx, question, in.Texts, r.rerankTopK)
	if err != nil {
		logger.Warnw("rerank failed, keeping retrieval order", "error", err)
		return in
	}

	out := &Retrieval{
		Texts:  make([]string, 0, len(ranked)),
		Scores: make([]float64, 0, len(ranked)),
		Metas:  make([]map[string]any, 0, len(ranked)),
	}
	for _, res := range ranked {
		if res.Index < 0 || res.Index >= len(in.Texts) {
			continue
		}
		out.Texts = append(out.Texts, in.Texts[res.Index])
		out.Scores = append(out.Scores, res.Score)
		out.Metas = append(out.Metas, in.Metas[res.Index])
	}
	return out
}
