package rerank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
	"github.com/kart-io/hermes/pkg/llm"
)

const scorePrompt = `Αξιολόγησε τη συνάφεια του αποσπάσματος με την ερώτηση.

Ερώτηση: %s

Απόσπασμα: %s

Απάντησε ΜΟΝΟ με έναν αριθμό από 0 έως 1:
- 1.0: απολύτως συναφές, απαντά άμεσα στην ερώτηση
- 0.7-0.9: πολύ συναφές
- 0.4-0.6: μερικώς συναφές
- 0.1-0.3: ελάχιστα συναφές
- 0.0: άσχετο

Βαθμός συνάφειας:`

// LLMReranker scores each candidate with a pairwise relevance prompt.
type LLMReranker struct {
	chat llm.ChatProvider
}

// NewLLMReranker creates an LLM-backed reranker.
func NewLLMReranker(chat llm.ChatProvider) *LLMReranker {
	return &LLMReranker{chat: chat}
}

func (r *LLMReranker) Enabled() bool { return true }
func (r *LLMReranker) Name() string  { return "llm" }

// Rerank scores each document independently, sorts by descending score and
// truncates to topN. A failed scoring call keeps the document with a neutral
// score so one bad call cannot drop a candidate.
func (r *LLMReranker) Rerank(ctx context.Context, query string, documents []string, topN int) ([]Result, error) {
	results := make([]Result, len(documents))
	for i, doc := range documents {
		score, err := r.scoreRelevance(ctx, query, doc)
		if err != nil {
			logger.Warnw("relevance scoring failed", "index", i, "error", err.Error())
			score = 0.5
		}
		results[i] = Result{Index: i, Score: score}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// scoreRelevance asks the chat model for a 0..1 relevance score.
func (r *LLMReranker) scoreRelevance(ctx context.Context, query, document string) (float64, error) {
	truncated := textutil.TruncateString(document, 2000)

	response, err := r.chat.Generate(ctx, fmt.Sprintf(scorePrompt, query, truncated), "")
	if err != nil {
		return 0, err
	}

	return parseScore(response), nil
}

// parseScore extracts a score in [0,1] from a model response, defaulting to
// 0.5 when no usable number is present.
func parseScore(response string) float64 {
	response = strings.TrimSpace(response)

	var score float64
	if _, err := fmt.Sscanf(response, "%f", &score); err == nil {
		if score >= 0 && score <= 1 {
			return score
		}
	}

	for _, part := range strings.Fields(response) {
		part = strings.Trim(part, ".,:")
		if _, err := fmt.Sscanf(part, "%f", &score); err == nil {
			if score >= 0 && score <= 1 {
				return score
			}
		}
	}

	return 0.5
}
