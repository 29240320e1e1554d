package biz

import (
	"context"

	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/pkg/llm"
)

// Service is the top-level query pipeline. It composes the classifier,
// retriever and generator into a plan/fulfill/stream protocol. A Service
// holds only read-only configuration and is safe for concurrent use.
type Service struct {
	classifier *Classifier
	retriever  *Retriever
	generator  *Generator
	cache      *AnswerCache

	routerEnabled bool
	minScore      float64
}

// NewService creates a Service. cache may be nil to disable answer caching.
func NewService(classifier *Classifier, retriever *Retriever, generator *Generator, cache *AnswerCache, routerEnabled bool, minScore float64) *Service {
	if cache == nil {
		cache = NewAnswerCache(nil, 0)
	}
	return &Service{
		classifier:    classifier,
		retriever:     retriever,
		generator:     generator,
		cache:         cache,
		routerEnabled: routerEnabled,
		minScore:      minScore,
	}
}

// PlanQuestion routes a question. Unsafe, out-of-scope and chat questions
// never touch the vector store; retrieval questions carry their ranked hits
// in the returned plan.
func (s *Service) PlanQuestion(ctx context.Context, question string) (*QueryPlan, error) {
	pre := preprocess(question)

	label := LabelNeedRAG
	if s.routerEnabled {
		label = s.classifier.Classify(ctx, pre.question)
	}

	switch label {
	case LabelUnsafe:
		return &QueryPlan{Question: pre.question, Mode: ModeUnsafe, Label: label, Message: UnsafeResponse}, nil
	case LabelOutOfScope:
		return &QueryPlan{Question: pre.question, Mode: ModeOutOfScope, Label: label, Message: OutOfScopeResponse}, nil
	case LabelNeedRAG:
		// fall through to retrieval
	default:
		// NO_RAG and anything else non-retrieval answers as free-form chat.
		return &QueryPlan{Question: pre.question, Mode: ModeChat, Label: label}, nil
	}

	hits, err := s.retriever.Retrieve(ctx, pre.question)
	if err != nil {
		return nil, err
	}

	if hits.Empty() {
		guardLabel := LabelNoContext
		if pre.forceNoAnswer {
			guardLabel = LabelForceNoAnswer
		}
		return &QueryPlan{Question: pre.question, Mode: ModeGuardrail, Label: guardLabel, Message: NoContextResponse}, nil
	}
	if hits.MaxScore() < s.minScore {
		logger.Infow("retrieval confidence below threshold",
			"question", pre.question, "max_score", hits.MaxScore(), "min_score", s.minScore)
		return &QueryPlan{Question: pre.question, Mode: ModeGuardrail, Label: LabelLowConfidence, Message: NoContextResponse}, nil
	}

	return &QueryPlan{
		Question: pre.question,
		Mode:     ModeRAG,
		Label:    LabelNeedRAG,
		CtxTexts: hits.Texts,
		Scores:   hits.Scores,
		Metas:    hits.Metas,
	}, nil
}

// FulfillPlan derives the outcome of a plan. Plans with a preset message
// return it byte-identical; the model is only consulted on the rag and
// free-chat paths.
func (s *Service) FulfillPlan(ctx context.Context, plan *QueryPlan) (*QueryOutcome, error) {
	answer, err := s.answerFor(ctx, plan)
	metrics.Get().RecordQuery(string(plan.Mode), err)
	if err != nil {
		return nil, err
	}
	return &QueryOutcome{
		Answer:   answer,
		CtxTexts: plan.CtxTexts,
		Scores:   plan.Scores,
		Metas:    plan.Metas,
		Mode:     plan.Mode,
		Label:    plan.Label,
	}, nil
}

func (s *Service) answerFor(ctx context.Context, plan *QueryPlan) (string, error) {
	switch plan.Mode {
	case ModeRAG:
		return s.generator.Answer(ctx, plan.Question, plan.CtxTexts)
	case ModeChat:
		if plan.Message != "" {
			return plan.Message, nil
		}
		answer, err := s.generator.Chat(ctx, plan.Question, plan.Label)
		if err != nil {
			return "", err
		}
		return DedupeSentences(answer), nil
	default:
		return plan.Message, nil
	}
}

// AnswerQuestion plans and fulfills in one call, consulting the answer
// cache first. Only rag-mode outcomes are cached.
func (s *Service) AnswerQuestion(ctx context.Context, question string) (*QueryOutcome, error) {
	if cached := s.cache.Get(ctx, question); cached != nil {
		metrics.Get().RecordQuery(string(cached.Mode), nil)
		return cached, nil
	}

	plan, err := s.PlanQuestion(ctx, question)
	if err != nil {
		metrics.Get().RecordQuery("", err)
		return nil, err
	}
	outcome, err := s.FulfillPlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	s.cache.Put(ctx, question, outcome)
	return outcome, nil
}

// StreamPlan streams the answer for a plan. Only the rag path streams real
// tokens; every other mode emits its full answer as a single chunk. The
// channel closes when generation finishes; consumers cancel via ctx. A
// consumed stream cannot be rewound.
func (s *Service) StreamPlan(ctx context.Context, plan *QueryPlan) (<-chan llm.StreamChunk, error) {
	if plan.Mode == ModeRAG {
		stream, err := s.generator.StreamAnswer(ctx, plan.Question, plan.CtxTexts)
		metrics.Get().RecordQuery(string(plan.Mode), err)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}

	if plan.Message != "" {
		metrics.Get().RecordQuery(string(plan.Mode), nil)
		return singleChunk(plan.Message), nil
	}

	outcome, err := s.FulfillPlan(ctx, plan)
	if err != nil {
		return nil, err
	}
	return singleChunk(outcome.Answer), nil
}
