package biz

import (
	"context"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kart-io/logger"

	"github.com/kart-io/hermes/pkg/llm"
	routeropts "github.com/kart-io/hermes/pkg/options/router"
)

// Classifier assigns an intent label to a question. Classification never
// fails: any backend error, empty response or unknown label falls back to
// NEED_RAG so ambiguous questions stay grounded in retrieval.
type Classifier struct {
	chat      llm.ChatProvider
	rules     []routeropts.Rule
	greetings []string
}

// NewClassifier creates a Classifier. chat may be nil, in which case the
// heuristic stages still run but both LLM stages are skipped.
func NewClassifier(opts *routeropts.Options, chat llm.ChatProvider) *Classifier {
	return &Classifier{
		chat:      chat,
		rules:     opts.Rules,
		greetings: opts.Greetings,
	}
}

// Classify returns one of NEED_RAG, NO_RAG, OUT_OF_SCOPE, UNSAFE.
// Stages run in order and the first verdict wins: greeting heuristic,
// meta-question check, configured rules, LLM fallback.
func (c *Classifier) Classify(ctx context.Context, question string) string {
	lowered := strings.ToLower(strings.TrimSpace(question))

	if c.isGreeting(lowered) {
		return LabelNoRAG
	}
	if c.isMetaQuestion(ctx, question) {
		return LabelNoRAG
	}
	if label, ok := c.matchRules(lowered); ok {
		return label
	}
	return c.classifyLLM(ctx, question)
}

// isGreeting reports whether the lower-cased question starts with or
// contains a configured greeting token.
func (c *Classifier) isGreeting(lowered string) bool {
	if lowered == "" {
		return false
	}
	for _, g := range c.greetings {
		token := strings.ToLower(strings.TrimSpace(g))
		if token == "" {
			continue
		}
		if strings.HasPrefix(lowered, token) || strings.Contains(lowered, token) {
			return true
		}
	}
	return false
}

// isMetaQuestion asks the routing model whether the question is about the
// assistant itself. Errors answer no.
func (c *Classifier) isMetaQuestion(ctx context.Context, question string) bool {
	if c.chat == nil {
		return false
	}

	resp, err := c.chat.Generate(ctx, buildMetaPrompt(question), ClassifySystemPrompt)
	if err != nil {
		logger.Warnw("meta-question check failed", "error", err)
		return false
	}

	answer := strings.ToUpper(strings.TrimSpace(resp))
	return strings.HasPrefix(answer, "ΝΑΙ") || strings.HasPrefix(answer, "YES")
}

// matchRules evaluates configured glob rules against the lower-cased
// question. The first matching rule wins.
func (c *Classifier) matchRules(lowered string) (string, bool) {
	for _, rule := range c.rules {
		matched, err := doublestar.Match(strings.ToLower(rule.Pattern), lowered)
		if err != nil || !matched {
			continue
		}
		switch rule.Route {
		case routeropts.RouteRAG:
			return LabelNeedRAG, true
		case routeropts.RouteChat:
			return LabelNoRAG, true
		}
	}
	return "", false
}

// classifyLLM runs the single-label classification call. Anything outside
// the allowed set falls back to NEED_RAG.
func (c *Classifier) classifyLLM(ctx context.Context, question string) string {
	if c.chat == nil {
		return LabelNeedRAG
	}

	resp, err := c.chat.Generate(ctx, buildClassifyPrompt(question), ClassifySystemPrompt)
	if err != nil {
		logger.Warnw("classification call failed, defaulting to retrieval", "error", err)
		return LabelNeedRAG
	}

	label := strings.ToUpper(strings.TrimSpace(resp))
	switch label {
	case LabelNeedRAG, LabelNoRAG, LabelOutOfScope, LabelUnsafe:
		return label
	default:
		logger.Warnw("classifier returned unknown label, defaulting to retrieval", "label", label)
		return LabelNeedRAG
	}
}
