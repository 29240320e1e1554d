package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

func TestRecordQueryByMode(t *testing.T) {
	m := newTestMetrics()

	m.RecordQuery("rag", nil)
	m.RecordQuery("rag", nil)
	m.RecordQuery("chat", nil)
	m.RecordQuery("unsafe", nil)
	m.RecordQuery("out_of_scope", nil)
	m.RecordQuery("guardrail", nil)
	m.RecordQuery("rag", errors.New("boom"))

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(7), snap.QueriesTotal)
	assert.Equal(t, uint64(2), snap.QueriesRAG)
	assert.Equal(t, uint64(1), snap.QueriesChat)
	assert.Equal(t, uint64(1), snap.QueriesUnsafe)
	assert.Equal(t, uint64(1), snap.QueriesOutScope)
	assert.Equal(t, uint64(1), snap.QueriesGuardrail)
	assert.Equal(t, uint64(1), snap.QueriesErrors)
}

func TestRecordCache(t *testing.T) {
	m := newTestMetrics()

	m.RecordCache(true)
	m.RecordCache(false)
	m.RecordCache(false)

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)
}

func TestRecordRetrievalAndLLM(t *testing.T) {
	m := newTestMetrics()

	m.RecordRetrieval(10*time.Millisecond, nil)
	m.RecordRetrieval(0, errors.New("down"))
	m.RecordLLMCall(20*time.Millisecond, nil)
	m.RecordLLMCall(0, errors.New("down"))
	m.RecordStream()

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(2), snap.RetrievalTotal)
	assert.Equal(t, uint64(1), snap.RetrievalErrors)
	assert.Equal(t, uint64(2), snap.LLMCallsTotal)
	assert.Equal(t, uint64(1), snap.LLMCallsErrors)
	assert.Equal(t, uint64(1), snap.StreamsTotal)
}

func TestRecordIndexing(t *testing.T) {
	m := newTestMetrics()

	m.RecordIndexing(3, 42, nil)
	m.RecordIndexing(0, 0, errors.New("bad corpus"))

	snap := m.GetSnapshot()
	assert.Equal(t, uint64(3), snap.DocumentsIndexed)
	assert.Equal(t, uint64(42), snap.ChunksIndexed)
	assert.Equal(t, uint64(1), snap.IndexErrors)
}

func TestExportFormat(t *testing.T) {
	m := newTestMetrics()
	m.RecordQuery("rag", nil)
	m.RecordStream()

	out := m.Export("hermes", "query")

	assert.Contains(t, out, "# HELP hermes_query_queries_total")
	assert.Contains(t, out, "# TYPE hermes_query_queries_total counter")
	assert.Contains(t, out, "hermes_query_queries_total 1\n")
	assert.Contains(t, out, "hermes_query_streams_total 1\n")
	assert.Contains(t, out, "# TYPE hermes_query_uptime_seconds gauge")

	// No subsystem drops the extra prefix segment.
	assert.True(t, strings.Contains(m.Export("hermes", ""), "hermes_queries_total"))
}

func TestGetReturnsSameInstance(t *testing.T) {
	assert.Same(t, Get(), Get())
}
