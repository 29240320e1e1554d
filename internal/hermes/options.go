// Package hermes assembles the query service application.
package hermes

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/kart-io/hermes/pkg/app"
	historyopts "github.com/kart-io/hermes/pkg/options/history"
	httpopts "github.com/kart-io/hermes/pkg/options/http"
	llmopts "github.com/kart-io/hermes/pkg/options/llm"
	logopts "github.com/kart-io/hermes/pkg/options/logger"
	milvusopts "github.com/kart-io/hermes/pkg/options/milvus"
	redisopts "github.com/kart-io/hermes/pkg/options/redis"
	rerankeropts "github.com/kart-io/hermes/pkg/options/reranker"
	routeropts "github.com/kart-io/hermes/pkg/options/router"
	splitteropts "github.com/kart-io/hermes/pkg/options/splitter"
	tracingopts "github.com/kart-io/hermes/pkg/options/tracing"
)

var _ app.CliOptions = (*Options)(nil)

// Options contains all query service options.
type Options struct {
	// HTTP contains server configuration.
	HTTP *httpopts.Options `json:"http" mapstructure:"http"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Milvus contains vector database configuration.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Embedding contains the embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatLLM contains the answer generation provider configuration.
	ChatLLM *llmopts.ProviderOptions `json:"chat-llm" mapstructure:"chat-llm"`

	// Router contains intent classification configuration.
	Router *routeropts.Options `json:"router" mapstructure:"router"`

	// Reranker contains rescoring configuration.
	Reranker *rerankeropts.Options `json:"reranker" mapstructure:"reranker"`

	// Splitter contains document chunking configuration.
	Splitter *splitteropts.Options `json:"splitter" mapstructure:"splitter"`

	// Redis contains the answer cache configuration.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`

	// History contains conversation persistence configuration.
	History *historyopts.Options `json:"history" mapstructure:"history"`

	// Tracing contains OpenTelemetry configuration.
	Tracing *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// SystemPrompt overrides the grounded answer persona prompt.
	SystemPrompt string `json:"system-prompt" mapstructure:"system-prompt"`
}

// NewOptions creates Options with defaults.
func NewOptions() *Options {
	return &Options{
		HTTP:      httpopts.NewOptions(),
		Log:       logopts.NewOptions(),
		Milvus:    milvusopts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		ChatLLM:   llmopts.NewChatOptions(),
		Router:    routeropts.NewOptions(),
		Reranker:  rerankeropts.NewOptions(),
		Splitter:  splitteropts.NewOptions(),
		Redis:     redisopts.NewOptions(),
		History:   historyopts.NewOptions(),
		Tracing:   tracingopts.NewOptions(),
	}
}

// AddFlags adds all service flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Milvus.AddFlags(fs, "milvus")
	o.Embedding.AddFlags(fs, "embedding")
	o.ChatLLM.AddFlags(fs, "chat-llm")
	o.Router.AddFlags(fs)
	o.Reranker.AddFlags(fs)
	o.Splitter.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.History.AddFlags(fs)
	o.Tracing.AddFlags(fs)
	fs.StringVar(&o.SystemPrompt, "system-prompt", o.SystemPrompt, "Override the grounded answer system prompt")
}

// Validate validates all options.
func (o *Options) Validate() error {
	if err := o.HTTP.Validate(); err != nil {
		return err
	}
	if err := o.Log.Validate(); err != nil {
		return err
	}
	for _, err := range o.Milvus.Validate() {
		return fmt.Errorf("milvus: %w", err)
	}
	for _, err := range o.Embedding.Validate() {
		return fmt.Errorf("embedding: %w", err)
	}
	for _, err := range o.ChatLLM.Validate() {
		return fmt.Errorf("chat-llm: %w", err)
	}
	if err := o.Router.Validate(); err != nil {
		return err
	}
	if err := o.Reranker.Validate(); err != nil {
		return err
	}
	if err := o.Splitter.Validate(); err != nil {
		return err
	}
	if err := o.Redis.Validate(); err != nil {
		return err
	}
	if err := o.History.Validate(); err != nil {
		return err
	}
	return o.Tracing.Validate()
}

// Complete fills in derived defaults.
func (o *Options) Complete() error {
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	if err := o.ChatLLM.Complete(); err != nil {
		return err
	}
	return o.Tracing.Complete()
}
