// Package router provides query routing configuration options.
package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/pflag"

	llmopts "github.com/kart-io/hermes/pkg/options/llm"
)

// Route names accepted by rule patterns.
const (
	RouteRAG  = "rag"
	RouteChat = "chat"
)

// Rule maps a glob pattern to a route. Patterns are matched against the
// lower-cased question, first match wins.
type Rule struct {
	Pattern string `json:"pattern" mapstructure:"pattern"`
	Route   string `json:"route" mapstructure:"route"`
}

// Options contains query routing configuration.
type Options struct {
	// Enabled toggles intent classification. When false every question is
	// treated as a retrieval question.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// MinScore is the confidence threshold below which retrieval results are
	// discarded and the guardrail fallback is returned.
	MinScore float64 `json:"min-score" mapstructure:"min-score"`

	// Rules are glob-based routing overrides checked before the LLM classifier.
	Rules []Rule `json:"rules" mapstructure:"rules"`

	// Greetings are tokens that short-circuit classification to a chat answer.
	Greetings []string `json:"greetings" mapstructure:"greetings"`

	// LLM configures the classification model. An empty provider leaves the
	// LLM classification stages disabled.
	LLM *llmopts.ProviderOptions `json:"llm" mapstructure:"llm"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:  true,
		MinScore: 0.4,
		Greetings: []string{
			"γεια", "καλημέρα", "καλησπέρα", "χαίρετε", "hello", "hi",
		},
		LLM: &llmopts.ProviderOptions{
			BaseURL:     "http://localhost:11434",
			Model:       "llama3.1:8b",
			Timeout:     30 * time.Second,
			Temperature: 0,
		},
	}
}

// LLMConfigured reports whether a classification model is configured.
func (o *Options) LLMConfigured() bool {
	return o.LLM != nil && o.LLM.Provider != ""
}

// AddFlags adds flags for router options to the specified FlagSet.
// Rules are structured and come from the config file only.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "router.enabled", o.Enabled, "Enable intent classification")
	fs.Float64Var(&o.MinScore, "router.min-score", o.MinScore, "Retrieval confidence threshold")
	fs.StringSliceVar(&o.Greetings, "router.greetings", o.Greetings, "Greeting tokens routed to chat")
	if o.LLM != nil {
		o.LLM.AddFlags(fs, "router", "llm")
	}
}

// Validate validates the router options.
func (o *Options) Validate() error {
	if o.MinScore < 0 || o.MinScore > 1 {
		return fmt.Errorf("router.min-score must be in [0,1], got %f", o.MinScore)
	}
	for i, r := range o.Rules {
		if r.Pattern == "" {
			return fmt.Errorf("router.rules[%d]: pattern cannot be empty", i)
		}
		if !doublestar.ValidatePattern(r.Pattern) {
			return fmt.Errorf("router.rules[%d]: invalid pattern %q", i, r.Pattern)
		}
		switch strings.ToLower(r.Route) {
		case RouteRAG, RouteChat:
		default:
			return fmt.Errorf("router.rules[%d]: route must be %q or %q, got %q", i, RouteRAG, RouteChat, r.Route)
		}
	}
	if o.LLMConfigured() {
		for _, err := range o.LLM.Validate() {
			return fmt.Errorf("router.llm: %w", err)
		}
	}
	return nil
}
