// Package milvusopts provides options for Milvus client configuration.
package milvusopts

import (
	"fmt"
	"time"

	"github.com/kart-io/hermes/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains Milvus client configuration.
type Options struct {
	// Address is the Milvus server address (host:port).
	Address string `json:"address" mapstructure:"address"`

	// Database is the database name to use.
	Database string `json:"database" mapstructure:"database"`

	// Username for authentication.
	Username string `json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `json:"password" mapstructure:"password"`

	// Collection is the collection holding the regulation chunks.
	Collection string `json:"collection" mapstructure:"collection"`

	// EmbeddingDim is the dimension of stored vectors.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`

	// Metric is the native similarity metric (cosine, l2, ip).
	Metric string `json:"metric" mapstructure:"metric"`

	// TopK is how many nearest chunks a similarity search returns.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Timeout for connection and operations.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Address:      "localhost:19530",
		Database:     "default",
		Collection:   "regulation_chunks",
		EmbeddingDim: 768,
		Metric:       "cosine",
		TopK:         6,
		Timeout:      30 * time.Second,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Address, options.Join(prefixes...)+"address", o.Address, "Milvus server address (host:port).")
	fs.StringVar(&o.Database, options.Join(prefixes...)+"database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, options.Join(prefixes...)+"username", o.Username, "Milvus username for authentication.")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"password", o.Password, "Milvus password for authentication.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"collection", o.Collection, "Milvus collection name.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
	fs.StringVar(&o.Metric, options.Join(prefixes...)+"metric", o.Metric, "Native similarity metric (cosine, l2, ip).")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"top-k", o.TopK, "Number of nearest chunks returned per search.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"timeout", o.Timeout, "Connection and operation timeout.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("milvus address is required"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("milvus collection is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("milvus embedding-dim must be positive"))
	}
	switch o.Metric {
	case "cosine", "l2", "ip":
	default:
		errs = append(errs, fmt.Errorf("milvus metric must be one of cosine, l2, ip"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("milvus top-k must be positive"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("milvus timeout must be positive"))
	}
	return errs
}
