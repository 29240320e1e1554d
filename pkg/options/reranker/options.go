// Package reranker provides reranker configuration options.
package reranker

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// Provider names understood by the reranker factory.
const (
	ProviderLLM  = "llm"
	ProviderHTTP = "http"
)

// Options contains reranker configuration.
type Options struct {
	// Enabled toggles the rescoring pass.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Provider selects the rescoring backend (llm, http).
	Provider string `json:"provider" mapstructure:"provider"`

	// Model is the scoring model name.
	Model string `json:"model" mapstructure:"model"`

	// TopK is how many candidates survive rescoring.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// BaseURL is the endpoint for the http provider.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey authenticates against the http provider.
	APIKey string `json:"-" mapstructure:"api-key"`

	// Timeout bounds a single rescoring call.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Provider: ProviderLLM,
		TopK:     3,
		Timeout:  30 * time.Second,
	}
}

// AddFlags adds flags for reranker options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Enabled, "reranker.enabled", o.Enabled, "Enable retrieval rescoring")
	fs.StringVar(&o.Provider, "reranker.provider", o.Provider, "Rescoring backend (llm, http)")
	fs.StringVar(&o.Model, "reranker.model", o.Model, "Rescoring model name")
	fs.IntVar(&o.TopK, "reranker.top-k", o.TopK, "Candidates kept after rescoring")
	fs.StringVar(&o.BaseURL, "reranker.base-url", o.BaseURL, "Endpoint for the http rescoring backend")
	fs.StringVar(&o.APIKey, "reranker.api-key", o.APIKey, "API key for the http rescoring backend")
	fs.DurationVar(&o.Timeout, "reranker.timeout", o.Timeout, "Rescoring call timeout")
}

// Validate validates the reranker options.
func (o *Options) Validate() error {
	if !o.Enabled {
		return nil
	}
	switch o.Provider {
	case ProviderLLM, ProviderHTTP:
	default:
		return fmt.Errorf("reranker.provider must be %q or %q, got %q", ProviderLLM, ProviderHTTP, o.Provider)
	}
	if o.Provider == ProviderHTTP && o.BaseURL == "" {
		return fmt.Errorf("reranker.base-url is required for the http provider")
	}
	if o.TopK <= 0 {
		return fmt.Errorf("reranker.top-k must be positive")
	}
	return nil
}
