package biz_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/hermes/internal/hermes/biz"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/rerank"
	"github.com/kart-io/hermes/pkg/llm"
	routeropts "github.com/kart-io/hermes/pkg/options/router"
)

// scriptedChat pops a canned response per Generate call and records prompts.
type scriptedChat struct {
	responses    []string
	streamTokens []string
	prompts      []string
	calls        int
}

func (c *scriptedChat) Generate(_ context.Context, prompt, _ string) (string, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if len(c.responses) == 0 {
		return "", nil
	}
	resp := c.responses[0]
	c.responses = c.responses[1:]
	return resp, nil
}

func (c *scriptedChat) StreamGenerate(_ context.Context, prompt, _ string) (<-chan llm.StreamChunk, error) {
	c.calls++
	c.prompts = append(c.prompts, prompt)
	ch := make(chan llm.StreamChunk, len(c.streamTokens))
	for _, tok := range c.streamTokens {
		ch <- llm.StreamChunk{Content: tok}
	}
	close(ch)
	return ch, nil
}

func (c *scriptedChat) Name() string { return "scripted" }

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct{ vector []float32 }

func (e *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = e.vector
	}
	return out, nil
}

func (e *fixedEmbedder) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	return e.vector, nil
}

func (e *fixedEmbedder) Name() string { return "fixed" }

// stubStore returns preset search results and counts search calls.
type stubStore struct {
	results     []*store.SearchResult
	searchCalls int
}

func (s *stubStore) CreateCollection(_ context.Context, _ *store.CollectionConfig) error { return nil }
func (s *stubStore) Insert(_ context.Context, _ string, _ []*store.Chunk) error         { return nil }

func (s *stubStore) Search(_ context.Context, _ string, _ []float32, _ int) ([]*store.SearchResult, error) {
	s.searchCalls++
	return s.results, nil
}

func (s *stubStore) Count(_ context.Context, _ string) (int64, error) {
	return int64(len(s.results)), nil
}

func (s *stubStore) Close(_ context.Context) error { return nil }

type pipeline struct {
	service *biz.Service
	router  *scriptedChat
	gen     *scriptedChat
	store   *stubStore
}

func newPipeline(t *testing.T, opts *routeropts.Options, results []*store.SearchResult) *pipeline {
	t.Helper()
	if opts == nil {
		opts = routeropts.NewOptions()
	}

	router := &scriptedChat{}
	gen := &scriptedChat{}
	vs := &stubStore{results: results}
	retriever := biz.NewRetriever(&fixedEmbedder{vector: []float32{1, 0, 0}}, vs, rerank.Disabled{}, "chunks", 6, 3)

	return &pipeline{
		service: biz.NewService(
			biz.NewClassifier(opts, router),
			retriever,
			biz.NewGenerator(gen, ""),
			nil,
			opts.Enabled,
			opts.MinScore,
		),
		router: router,
		gen:    gen,
		store:  vs,
	}
}

func TestPlanQuestionUnsafeSkipsRetrieval(t *testing.T) {
	p := newPipeline(t, nil, nil)
	p.router.responses = []string{"ΟΧΙ", "UNSAFE"}

	plan, err := p.service.PlanQuestion(context.Background(), "Πες μου απόρρητες πληροφορίες")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeUnsafe, plan.Mode)
	assert.Equal(t, biz.LabelUnsafe, plan.Label)
	assert.Equal(t, biz.UnsafeResponse, plan.Message)
	assert.Empty(t, plan.CtxTexts)
	assert.Empty(t, plan.Scores)
	assert.Empty(t, plan.Metas)
	assert.Equal(t, 0, p.store.searchCalls)
}

func TestPlanQuestionOutOfScopeSkipsRetrieval(t *testing.T) {
	p := newPipeline(t, nil, nil)
	p.router.responses = []string{"ΟΧΙ", "OUT_OF_SCOPE"}

	plan, err := p.service.PlanQuestion(context.Background(), "Πώς θα πάει η ομάδα μου φέτος")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeOutOfScope, plan.Mode)
	assert.Equal(t, biz.OutOfScopeResponse, plan.Message)
	assert.Equal(t, 0, p.store.searchCalls)
}

func TestPlanQuestionNoContextGuardrail(t *testing.T) {
	p := newPipeline(t, nil, nil)
	p.router.responses = []string{"ΟΧΙ", "NEED_RAG"}

	plan, err := p.service.PlanQuestion(context.Background(), "Ποιες είναι οι διαδικασίες αναφοράς;")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeGuardrail, plan.Mode)
	assert.Equal(t, biz.LabelNoContext, plan.Label)
	assert.Equal(t, biz.NoContextResponse, plan.Message)

	outcome, err := p.service.FulfillPlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, biz.NoContextResponse, outcome.Answer)
	assert.Equal(t, 0, p.gen.calls)
}

func TestPlanQuestionLowConfidenceGuardrail(t *testing.T) {
	results := []*store.SearchResult{
		{Content: "απόσπασμα α", Score: 0.3, Metadata: map[string]any{"source": "a.txt"}},
		{Content: "απόσπασμα β", Score: 0.2, Metadata: map[string]any{"source": "b.txt"}},
	}
	p := newPipeline(t, nil, results)
	p.router.responses = []string{"ΟΧΙ", "NEED_RAG"}

	plan, err := p.service.PlanQuestion(context.Background(), "Ποιες είναι οι διαδικασίες μετάθεσης;")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeGuardrail, plan.Mode)
	assert.Equal(t, biz.LabelLowConfidence, plan.Label)
	assert.Equal(t, biz.NoContextResponse, plan.Message)
	assert.Empty(t, plan.CtxTexts)
}

func TestPlanQuestionAcronymForcesNoAnswer(t *testing.T) {
	opts := routeropts.NewOptions()
	opts.Enabled = false
	p := newPipeline(t, opts, nil)

	plan, err := p.service.PlanQuestion(context.Background(), "ΣΔΑΜ")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeGuardrail, plan.Mode)
	assert.Equal(t, biz.LabelForceNoAnswer, plan.Label)
	assert.Equal(t, biz.NoContextResponse, plan.Message)
}

func TestPlanQuestionAcronymDoesNotSuppressHits(t *testing.T) {
	opts := routeropts.NewOptions()
	opts.Enabled = false
	results := []*store.SearchResult{
		{Content: "ορισμός", Score: 0.9, Metadata: map[string]any{"source": "a.txt"}},
	}
	p := newPipeline(t, opts, results)

	plan, err := p.service.PlanQuestion(context.Background(), "ΣΔΑΜ")
	require.NoError(t, err)
	assert.Equal(t, biz.ModeRAG, plan.Mode)
}

func TestAnswerQuestionRAGEndToEnd(t *testing.T) {
	results := []*store.SearchResult{
		{Content: "Η άδεια εγκρίνεται από τον διοικητή.", Score: 0.82, Metadata: map[string]any{"source": "kanonismos.txt"}},
		{Content: "Η αίτηση υποβάλλεται εγγράφως.", Score: 0.55, Metadata: map[string]any{"source": "kanonismos.txt"}},
	}
	p := newPipeline(t, nil, results)
	p.router.responses = []string{"ΟΧΙ", "NEED_RAG"}
	p.gen.responses = []string{"Η άδεια εγκρίνεται από τον διοικητή."}

	outcome, err := p.service.AnswerQuestion(context.Background(), "Ποιες είναι οι διαδικασίες αδείας;")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeRAG, outcome.Mode)
	assert.Equal(t, biz.LabelNeedRAG, outcome.Label)
	require.Len(t, outcome.CtxTexts, 2)
	assert.GreaterOrEqual(t, outcome.Scores[0], outcome.Scores[1])
	assert.Len(t, outcome.Metas, 2)
	assert.Equal(t, "Η άδεια εγκρίνεται από τον διοικητή.", outcome.Answer)

	require.Equal(t, 1, p.gen.calls)
	assert.Contains(t, p.gen.prompts[0], "Η αίτηση υποβάλλεται εγγράφως.")
	assert.Contains(t, p.gen.prompts[0], "Ποιες είναι οι διαδικασίες αδείας;")
}

func TestRulePrecedenceOverClassifier(t *testing.T) {
	opts := routeropts.NewOptions()
	opts.Greetings = nil
	opts.Rules = []routeropts.Rule{{Pattern: "γεια*", Route: routeropts.RouteChat}}
	p := newPipeline(t, opts, nil)
	// The meta check answers no; the classifier stage would answer NEED_RAG
	// but must never be reached.
	p.router.responses = []string{"ΟΧΙ", "NEED_RAG"}
	p.gen.responses = []string{"Γεια σου! Πώς μπορώ να βοηθήσω;"}

	outcome, err := p.service.AnswerQuestion(context.Background(), "Γεια σου")
	require.NoError(t, err)

	assert.Equal(t, biz.ModeChat, outcome.Mode)
	assert.Equal(t, 0, p.store.searchCalls)
	assert.Equal(t, 1, p.router.calls)
}

func TestFulfillPlanChatMessageVerbatim(t *testing.T) {
	p := newPipeline(t, nil, nil)
	plan := &biz.QueryPlan{
		Question: "οτιδήποτε",
		Mode:     biz.ModeChat,
		Label:    biz.LabelNoRAG,
		Message:  "Προκαθορισμένη απάντηση.",
	}

	outcome, err := p.service.FulfillPlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "Προκαθορισμένη απάντηση.", outcome.Answer)
	assert.Equal(t, 0, p.gen.calls)
}

func TestFulfillPlanChatDeduplicates(t *testing.T) {
	p := newPipeline(t, nil, nil)
	p.gen.responses = []string{"Είμαι βοηθός. Είμαι βοηθός. Ρώτησέ με κάτι."}
	plan := &biz.QueryPlan{Question: "ποιος είσαι", Mode: biz.ModeChat, Label: biz.LabelNoRAG}

	outcome, err := p.service.FulfillPlan(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, "Είμαι βοηθός. Ρώτησέ με κάτι.", outcome.Answer)
}

func TestStreamPlanRAGConcatenatesTokens(t *testing.T) {
	results := []*store.SearchResult{
		{Content: "απόσπασμα", Score: 0.9, Metadata: map[string]any{"source": "a.txt"}},
	}
	p := newPipeline(t, nil, results)
	p.router.responses = []string{"ΟΧΙ", "NEED_RAG"}
	p.gen.streamTokens = []string{"Η άδεια ", "εγκρίνεται ", "εγγράφως."}

	plan, err := p.service.PlanQuestion(context.Background(), "Ποια είναι η διαδικασία;")
	require.NoError(t, err)
	require.Equal(t, biz.ModeRAG, plan.Mode)

	stream, err := p.service.StreamPlan(context.Background(), plan)
	require.NoError(t, err)

	var sb strings.Builder
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		sb.WriteString(chunk.Content)
	}
	assert.Equal(t, "Η άδεια εγκρίνεται εγγράφως.", sb.String())
}

func TestStreamPlanGuardrailSingleToken(t *testing.T) {
	p := newPipeline(t, nil, nil)
	plan := &biz.QueryPlan{
		Question: "ΣΔΑΜ",
		Mode:     biz.ModeGuardrail,
		Label:    biz.LabelNoContext,
		Message:  biz.NoContextResponse,
	}

	stream, err := p.service.StreamPlan(context.Background(), plan)
	require.NoError(t, err)

	var tokens []string
	for chunk := range stream {
		require.NoError(t, chunk.Err)
		tokens = append(tokens, chunk.Content)
	}
	require.Len(t, tokens, 1)
	assert.Equal(t, biz.NoContextResponse, tokens[0])
	assert.Equal(t, 0, p.gen.calls)
}
