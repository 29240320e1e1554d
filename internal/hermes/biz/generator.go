package biz

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/pkg/llm"
)

// Generator produces answers with a language model. Grounded answers cite
// retrieved excerpts only; chat answers run without document access.
type Generator struct {
	chat         llm.ChatProvider
	systemPrompt string
}

// NewGenerator creates a Generator. systemPrompt overrides the default
// persona when non-empty.
func NewGenerator(chat llm.ChatProvider, systemPrompt string) *Generator {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Generator{chat: chat, systemPrompt: systemPrompt}
}

// Answer generates a grounded answer from the retrieved excerpts. An empty
// context never reaches the model: the fixed fallback is returned instead.
func (g *Generator) Answer(ctx context.Context, question string, ctxTexts []string) (string, error) {
	if len(ctxTexts) == 0 {
		return NoContextResponse, nil
	}

	start := time.Now()
	answer, err := g.chat.Generate(ctx, buildAnswerPrompt(question, ctxTexts), g.systemPrompt)
	metrics.Get().RecordLLMCall(time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// StreamAnswer streams a grounded answer token by token. An empty context
// yields the fixed fallback as a single chunk.
func (g *Generator) StreamAnswer(ctx context.Context, question string, ctxTexts []string) (<-chan llm.StreamChunk, error) {
	if len(ctxTexts) == 0 {
		return singleChunk(NoContextResponse), nil
	}

	metrics.Get().RecordStream()
	stream, err := g.chat.StreamGenerate(ctx, buildAnswerPrompt(question, ctxTexts), g.systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return stream, nil
}

// Chat generates a free-form answer without document access.
func (g *Generator) Chat(ctx context.Context, question, label string) (string, error) {
	start := time.Now()
	answer, err := g.chat.Generate(ctx, buildChatPrompt(question, label), ChatSystemPrompt)
	metrics.Get().RecordLLMCall(time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	return answer, nil
}

// singleChunk wraps a fixed message as a one-chunk stream.
func singleChunk(message string) <-chan llm.StreamChunk {
	ch := make(chan llm.StreamChunk, 1)
	ch <- llm.StreamChunk{Content: message}
	close(ch)
	return ch
}
