package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerankeropts "github.com/kart-io/hermes/pkg/options/reranker"
	"github.com/kart-io/hermes/pkg/llm"
)

type fakeChat struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeChat) Generate(_ context.Context, _ string, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	resp := f.responses[f.calls%len(f.responses)]
	f.calls++
	return resp, nil
}

func (f *fakeChat) StreamGenerate(context.Context, string, string) (<-chan llm.StreamChunk, error) {
	ch := make(chan llm.StreamChunk)
	close(ch)
	return ch, nil
}

func (f *fakeChat) Name() string { return "fake" }

func TestParseScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected float64
	}{
		{name: "bare number", response: "0.8", expected: 0.8},
		{name: "padded number", response: "  0.3\n", expected: 0.3},
		{name: "number in sentence", response: "Βαθμός: 0.7 περίπου", expected: 0.7},
		{name: "trailing punctuation", response: "0.9.", expected: 0.9},
		{name: "out of range", response: "42", expected: 0.5},
		{name: "no number", response: "πολύ συναφές", expected: 0.5},
		{name: "empty", response: "", expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, parseScore(tt.response), 1e-9)
		})
	}
}

func TestDisabledKeepsOrder(t *testing.T) {
	results, err := Disabled{}.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[1].Index)
	assert.False(t, Disabled{}.Enabled())
}

func TestLLMRerankerSortsByScore(t *testing.T) {
	chat := &fakeChat{responses: []string{"0.2", "0.9", "0.5"}}
	r := NewLLMReranker(chat)

	results, err := r.Rerank(context.Background(), "ερώτηση", []string{"α", "β", "γ"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Index)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, 2, results[1].Index)
	assert.Equal(t, 0, results[2].Index)
}

func TestLLMRerankerTruncatesToTopN(t *testing.T) {
	chat := &fakeChat{responses: []string{"0.1", "0.8", "0.6", "0.3"}}
	r := NewLLMReranker(chat)

	results, err := r.Rerank(context.Background(), "ερώτηση", []string{"α", "β", "γ", "δ"}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Index)
	assert.Equal(t, 2, results[1].Index)
}

func TestLLMRerankerScoringFailureIsNeutral(t *testing.T) {
	chat := &fakeChat{err: errors.New("model offline")}
	r := NewLLMReranker(chat)

	results, err := r.Rerank(context.Background(), "ερώτηση", []string{"α", "β"}, 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 0.5, results[0].Score, 1e-9)
	assert.InDelta(t, 0.5, results[1].Score, 1e-9)
}

func TestNewDisabledByOptions(t *testing.T) {
	r, err := New(nil, nil)
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	opts := rerankeropts.NewOptions()
	opts.Enabled = false
	r, err = New(opts, &fakeChat{})
	require.NoError(t, err)
	assert.False(t, r.Enabled())
}

func TestNewLLMRequiresChat(t *testing.T) {
	opts := rerankeropts.NewOptions()
	opts.Enabled = true
	opts.Provider = rerankeropts.ProviderLLM

	_, err := New(opts, nil)
	assert.Error(t, err)

	r, err := New(opts, &fakeChat{})
	require.NoError(t, err)
	assert.Equal(t, "llm", r.Name())
}

func TestHTTPRerankerParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/rerank", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ερώτηση", req.Query)
		assert.Len(t, req.Documents, 3)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"index": 2, "relevance_score": 0.91},
				{"index": 0, "relevance_score": 0.4},
				{"index": 7, "relevance_score": 0.99},
			},
		})
	}))
	defer srv.Close()

	opts := rerankeropts.NewOptions()
	opts.BaseURL = srv.URL
	opts.APIKey = "secret"
	r := NewHTTPReranker(opts)

	results, err := r.Rerank(context.Background(), "ερώτηση", []string{"α", "β", "γ"}, 2)
	require.NoError(t, err)
	// The out-of-range index is dropped.
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].Index)
	assert.InDelta(t, 0.91, results[0].Score, 1e-9)
	assert.Equal(t, 0, results[1].Index)
}

func TestHTTPRerankerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	opts := rerankeropts.NewOptions()
	opts.BaseURL = srv.URL
	r := NewHTTPReranker(opts)

	_, err := r.Rerank(context.Background(), "ερώτηση", []string{"α"}, 1)
	assert.Error(t, err)
}

func TestNewUnknownProvider(t *testing.T) {
	opts := rerankeropts.NewOptions()
	opts.Enabled = true
	opts.Provider = "cohere"

	_, err := New(opts, nil)
	assert.Error(t, err)
}
