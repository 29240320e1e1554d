// Package rerank rescores retrieval candidates against the question.
package rerank

import (
	"context"
	"fmt"

	rerankeropts "github.com/kart-io/hermes/pkg/options/reranker"
	"github.com/kart-io/hermes/pkg/llm"
)

// Result is one rescored candidate. Index refers to the input order.
type Result struct {
	Index int
	Score float64
}

// Reranker rescores candidate texts. Implementations return results sorted
// by descending score and truncated to at most topN entries.
type Reranker interface {
	// Rerank scores each document against the query.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error)

	// Enabled reports whether rescoring actually happens.
	Enabled() bool

	// Name returns the backend name.
	Name() string
}

// Disabled is a Reranker that performs no rescoring. It is a real value so
// callers can branch on Enabled() instead of nil.
type Disabled struct{}

func (Disabled) Rerank(_ context.Context, _ string, documents []string, topN int) ([]Result, error) {
	n := len(documents)
	if topN > 0 && topN < n {
		n = topN
	}
	results := make([]Result, n)
	for i := range results {
		results[i] = Result{Index: i}
	}
	return results, nil
}

func (Disabled) Enabled() bool { return false }
func (Disabled) Name() string  { return "disabled" }

// New builds a Reranker from options. A disabled configuration yields the
// Disabled value; an unknown provider is a construction-time error.
func New(opts *rerankeropts.Options, chat llm.ChatProvider) (Reranker, error) {
	if opts == nil || !opts.Enabled {
		return Disabled{}, nil
	}

	switch opts.Provider {
	case rerankeropts.ProviderLLM:
		if chat == nil {
			return nil, fmt.Errorf("rerank: llm provider requires a chat model")
		}
		return NewLLMReranker(chat), nil
	case rerankeropts.ProviderHTTP:
		return NewHTTPReranker(opts), nil
	default:
		return nil, fmt.Errorf("rerank: unknown provider %q", opts.Provider)
	}
}
