package hermes

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/kart-io/hermes/internal/hermes/biz"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/splitter"
	"github.com/kart-io/hermes/pkg/app"
	"github.com/kart-io/hermes/pkg/component/milvus"
	"github.com/kart-io/hermes/pkg/llm"
)

// IngestOptions extends the service options with the corpus location.
type IngestOptions struct {
	*Options

	// Dir is the corpus directory to ingest.
	Dir string `json:"dir" mapstructure:"dir"`
}

// NewIngestOptions creates IngestOptions with defaults.
func NewIngestOptions() *IngestOptions {
	return &IngestOptions{
		Options: NewOptions(),
		Dir:     "data/docs",
	}
}

// AddFlags adds ingestion flags to the flagset.
func (o *IngestOptions) AddFlags(fs *pflag.FlagSet) {
	o.Options.AddFlags(fs)
	fs.StringVar(&o.Dir, "dir", o.Dir, "Corpus directory to ingest")
}

// NewIngestApp creates the corpus ingestion application.
func NewIngestApp() *app.App {
	opts := NewIngestOptions()

	return app.NewApp(
		app.WithName("hermes-ingest"),
		app.WithDescription("Loads, splits, embeds and indexes a regulation corpus."),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return RunIngest(opts)
		}),
	)
}

// RunIngest indexes the configured corpus directory and exits.
func RunIngest(opts *IngestOptions) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	ctx := context.Background()

	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}
	if opts.Redis.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     opts.Redis.Addr(),
			Password: opts.Redis.Password,
			DB:       opts.Redis.Database,
		})
		defer func() { _ = redisClient.Close() }()
		embedder = llm.NewCachedEmbeddingProvider(embedder, redisClient, nil)
	}

	milvusClient, err := milvus.New(opts.Milvus)
	if err != nil {
		return fmt.Errorf("milvus: %w", err)
	}
	defer func() { _ = milvusClient.Close(ctx) }()

	indexer := biz.NewIndexer(
		embedder,
		store.NewMilvusStore(milvusClient),
		splitter.New(opts.Splitter),
		opts.Milvus.Collection,
		opts.Milvus.EmbeddingDim,
	)

	logger.Infow("ingesting corpus", "dir", opts.Dir, "collection", opts.Milvus.Collection)
	docs, chunks, err := indexer.IndexDirectory(ctx, opts.Dir)
	if err != nil {
		return fmt.Errorf("index directory: %w", err)
	}
	logger.Infow("ingestion complete", "documents", docs, "chunks", chunks)
	return nil
}
