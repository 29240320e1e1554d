// Package handler provides HTTP and WebSocket handlers for the query service.
package handler

import (
	"github.com/kart-io/hermes/internal/hermes/biz"
	"github.com/kart-io/hermes/internal/hermes/history"
	"github.com/kart-io/hermes/internal/hermes/store"
)

// DemoResponse is returned when the pipeline has no configured providers.
const DemoResponse = "Το σύστημα RAG δεν είναι διαθέσιμο. Παρακαλώ ρυθμίστε το Milvus και το Ollama."

// sourcePreviewLen bounds how much chunk text is echoed back per source.
const sourcePreviewLen = 200

// Handler handles query service requests.
type Handler struct {
	service    *biz.Service
	indexer    *biz.Indexer
	store      store.VectorStore
	history    *history.Store
	collection string
	demoMode   bool
}

// New creates a Handler. history may be nil when persistence is disabled.
// demoMode short-circuits query handling with a fixed unavailable message.
func New(service *biz.Service, indexer *biz.Indexer, vs store.VectorStore, hist *history.Store, collection string, demoMode bool) *Handler {
	return &Handler{
		service:    service,
		indexer:    indexer,
		store:      vs,
		history:    hist,
		collection: collection,
		demoMode:   demoMode,
	}
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SourceInfo is one retrieval hit echoed back to the caller.
type SourceInfo struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// buildSources converts ranked hits into response sources, truncating long
// chunk texts.
func buildSources(ctxTexts []string, scores []float64, metas []map[string]any) []SourceInfo {
	sources := make([]SourceInfo, 0, len(ctxTexts))
	for i, text := range ctxTexts {
		sources = append(sources, SourceInfo{
			Text:   previewText(text),
			Score:  scores[i],
			Source: sourceOf(metas[i]),
		})
	}
	return sources
}

func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= sourcePreviewLen {
		return text
	}
	return string(runes[:sourcePreviewLen]) + "..."
}

func sourceOf(meta map[string]any) string {
	if meta != nil {
		if s, ok := meta["source"].(string); ok && s != "" {
			return s
		}
	}
	return "Άγνωστη πηγή"
}
