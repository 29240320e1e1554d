// Package metrics collects business metrics for the QA pipeline.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds pipeline counters. All counters are updated atomically.
type Metrics struct {
	// query counters by outcome mode
	queriesTotal     uint64
	queriesRAG       uint64
	queriesChat      uint64
	queriesUnsafe    uint64
	queriesOutScope  uint64
	queriesGuardrail uint64
	queriesErrors    uint64

	// cache counters
	cacheHits   uint64
	cacheMisses uint64

	// retrieval counters
	retrievalTotal    uint64
	retrievalErrors   uint64
	retrievalDuration float64

	// generation counters
	llmCallsTotal    uint64
	llmCallsErrors   uint64
	llmCallsDuration float64
	streamsTotal     uint64

	// indexing counters
	documentsIndexed uint64
	chunksIndexed    uint64
	indexErrors      uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordQuery records one answered question by its outcome mode.
func (m *Metrics) RecordQuery(mode string, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	switch mode {
	case "rag":
		atomic.AddUint64(&m.queriesRAG, 1)
	case "chat":
		atomic.AddUint64(&m.queriesChat, 1)
	case "unsafe":
		atomic.AddUint64(&m.queriesUnsafe, 1)
	case "out_of_scope":
		atomic.AddUint64(&m.queriesOutScope, 1)
	case "guardrail":
		atomic.AddUint64(&m.queriesGuardrail, 1)
	}
}

// RecordCache records an answer cache lookup.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
}

// RecordRetrieval records one retrieval call.
func (m *Metrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall records one generation call.
func (m *Metrics) RecordLLMCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordStream records one streamed answer.
func (m *Metrics) RecordStream() {
	atomic.AddUint64(&m.streamsTotal, 1)
}

// RecordIndexing records one ingestion run.
func (m *Metrics) RecordIndexing(documents, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.indexErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIndexed, uint64(documents))
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// Snapshot is a point-in-time copy of the counters for the stats endpoint.
type Snapshot struct {
	QueriesTotal     uint64  `json:"queries_total"`
	QueriesRAG       uint64  `json:"queries_rag"`
	QueriesChat      uint64  `json:"queries_chat"`
	QueriesUnsafe    uint64  `json:"queries_unsafe"`
	QueriesOutScope  uint64  `json:"queries_out_of_scope"`
	QueriesGuardrail uint64  `json:"queries_guardrail"`
	QueriesErrors    uint64  `json:"queries_errors"`
	CacheHits        uint64  `json:"cache_hits"`
	CacheMisses      uint64  `json:"cache_misses"`
	RetrievalTotal   uint64  `json:"retrieval_total"`
	RetrievalErrors  uint64  `json:"retrieval_errors"`
	LLMCallsTotal    uint64  `json:"llm_calls_total"`
	LLMCallsErrors   uint64  `json:"llm_calls_errors"`
	StreamsTotal     uint64  `json:"streams_total"`
	DocumentsIndexed uint64  `json:"documents_indexed"`
	ChunksIndexed    uint64  `json:"chunks_indexed"`
	IndexErrors      uint64  `json:"index_errors"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// GetSnapshot returns a copy of the current counters.
func (m *Metrics) GetSnapshot() Snapshot {
	return Snapshot{
		QueriesTotal:     atomic.LoadUint64(&m.queriesTotal),
		QueriesRAG:       atomic.LoadUint64(&m.queriesRAG),
		QueriesChat:      atomic.LoadUint64(&m.queriesChat),
		QueriesUnsafe:    atomic.LoadUint64(&m.queriesUnsafe),
		QueriesOutScope:  atomic.LoadUint64(&m.queriesOutScope),
		QueriesGuardrail: atomic.LoadUint64(&m.queriesGuardrail),
		QueriesErrors:    atomic.LoadUint64(&m.queriesErrors),
		CacheHits:        atomic.LoadUint64(&m.cacheHits),
		CacheMisses:      atomic.LoadUint64(&m.cacheMisses),
		RetrievalTotal:   atomic.LoadUint64(&m.retrievalTotal),
		RetrievalErrors:  atomic.LoadUint64(&m.retrievalErrors),
		LLMCallsTotal:    atomic.LoadUint64(&m.llmCallsTotal),
		LLMCallsErrors:   atomic.LoadUint64(&m.llmCallsErrors),
		StreamsTotal:     atomic.LoadUint64(&m.streamsTotal),
		DocumentsIndexed: atomic.LoadUint64(&m.documentsIndexed),
		ChunksIndexed:    atomic.LoadUint64(&m.chunksIndexed),
		IndexErrors:      atomic.LoadUint64(&m.indexErrors),
		UptimeSeconds:    time.Since(m.startTime).Seconds(),
	}
}

// Export renders the counters in Prometheus text exposition format.
func (m *Metrics) Export(namespace, subsystem string) string {
	var sb strings.Builder
	prefix := namespace
	if subsystem != "" {
		prefix = prefix + "_" + subsystem
	}

	counter := func(name, help string, value uint64) {
		sb.WriteString(fmt.Sprintf("# HELP %s_%s %s\n", prefix, name, help))
		sb.WriteString(fmt.Sprintf("# TYPE %s_%s counter\n", prefix, name))
		sb.WriteString(fmt.Sprintf("%s_%s %d\n\n", prefix, name, value))
	}

	counter("queries_total", "Total number of questions handled.", atomic.LoadUint64(&m.queriesTotal))
	counter("queries_rag_total", "Questions answered from retrieved context.", atomic.LoadUint64(&m.queriesRAG))
	counter("queries_chat_total", "Questions answered without retrieval.", atomic.LoadUint64(&m.queriesChat))
	counter("queries_unsafe_total", "Questions refused by the safety policy.", atomic.LoadUint64(&m.queriesUnsafe))
	counter("queries_out_of_scope_total", "Questions outside the regulation domain.", atomic.LoadUint64(&m.queriesOutScope))
	counter("queries_guardrail_total", "Questions answered with the fallback message.", atomic.LoadUint64(&m.queriesGuardrail))
	counter("queries_errors_total", "Questions that failed with an error.", atomic.LoadUint64(&m.queriesErrors))
	counter("cache_hits_total", "Answer cache hits.", atomic.LoadUint64(&m.cacheHits))
	counter("cache_misses_total", "Answer cache misses.", atomic.LoadUint64(&m.cacheMisses))
	counter("retrieval_total", "Total number of retrievals.", atomic.LoadUint64(&m.retrievalTotal))
	counter("retrieval_errors_total", "Number of retrieval errors.", atomic.LoadUint64(&m.retrievalErrors))
	counter("llm_calls_total", "Total number of generation calls.", atomic.LoadUint64(&m.llmCallsTotal))
	counter("llm_calls_errors_total", "Number of generation call errors.", atomic.LoadUint64(&m.llmCallsErrors))
	counter("streams_total", "Number of streamed answers.", atomic.LoadUint64(&m.streamsTotal))
	counter("documents_indexed_total", "Total documents ingested.", atomic.LoadUint64(&m.documentsIndexed))
	counter("chunks_indexed_total", "Total chunks ingested.", atomic.LoadUint64(&m.chunksIndexed))
	counter("index_errors_total", "Number of ingestion errors.", atomic.LoadUint64(&m.indexErrors))

	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	sb.WriteString(fmt.Sprintf("# HELP %s_retrieval_duration_seconds_total Total retrieval duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_retrieval_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_retrieval_duration_seconds_total %.6f\n\n", prefix, retrievalDuration))

	sb.WriteString(fmt.Sprintf("# HELP %s_llm_calls_duration_seconds_total Total generation duration.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_llm_calls_duration_seconds_total counter\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_llm_calls_duration_seconds_total %.6f\n\n", prefix, llmDuration))

	sb.WriteString(fmt.Sprintf("# HELP %s_uptime_seconds Process uptime.\n", prefix))
	sb.WriteString(fmt.Sprintf("# TYPE %s_uptime_seconds gauge\n", prefix))
	sb.WriteString(fmt.Sprintf("%s_uptime_seconds %.0f\n", prefix, time.Since(m.startTime).Seconds()))

	return sb.String()
}
