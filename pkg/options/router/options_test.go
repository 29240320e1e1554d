package router_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/hermes/pkg/options/router"
)

func TestValidateDefaults(t *testing.T) {
	assert.NoError(t, router.NewOptions().Validate())
}

func TestValidateMinScoreRange(t *testing.T) {
	opts := router.NewOptions()
	opts.MinScore = 1.5
	assert.Error(t, opts.Validate())

	opts.MinScore = -0.1
	assert.Error(t, opts.Validate())
}

func TestValidateRules(t *testing.T) {
	opts := router.NewOptions()
	opts.Rules = []router.Rule{{Pattern: "*άδεια*", Route: "rag"}}
	assert.NoError(t, opts.Validate())

	opts.Rules = []router.Rule{{Pattern: "", Route: "rag"}}
	assert.Error(t, opts.Validate())

	opts.Rules = []router.Rule{{Pattern: "[invalid", Route: "rag"}}
	assert.Error(t, opts.Validate())

	opts.Rules = []router.Rule{{Pattern: "γεια*", Route: "elsewhere"}}
	assert.Error(t, opts.Validate())
}

func TestLLMConfigured(t *testing.T) {
	opts := router.NewOptions()
	assert.False(t, opts.LLMConfigured())

	opts.LLM.Provider = "ollama"
	assert.True(t, opts.LLMConfigured())

	opts.LLM = nil
	assert.False(t, opts.LLMConfigured())
}
