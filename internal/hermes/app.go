package hermes

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/hermes/internal/hermes/biz"
	"github.com/kart-io/hermes/internal/hermes/handler"
	"github.com/kart-io/hermes/internal/hermes/history"
	"github.com/kart-io/hermes/internal/hermes/router"
	"github.com/kart-io/hermes/internal/hermes/store"
	"github.com/kart-io/hermes/internal/pkg/rag/rerank"
	"github.com/kart-io/hermes/internal/pkg/rag/splitter"
	"github.com/kart-io/hermes/pkg/app"
	"github.com/kart-io/hermes/pkg/component/milvus"
	"github.com/kart-io/hermes/pkg/llm"
	"github.com/kart-io/hermes/pkg/observability/tracing"
	"github.com/kart-io/hermes/pkg/server"

	// Register LLM providers.
	_ "github.com/kart-io/hermes/pkg/llm/ollama"
	_ "github.com/kart-io/hermes/pkg/llm/openai"
)

const (
	appName        = "hermes"
	appDescription = `Hermes regulation QA service

Answers natural-language questions against a corpus of Greek regulatory
documents. Questions are classified, grounded in ranked retrieval and
answered with deterministic fallbacks when evidence is insufficient.`
)

// NewApp creates the service application.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run starts the query service with the given options.
func Run(opts *Options) error {
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()
	logger.Infow("starting service", "name", appName)

	tracerProvider, err := tracing.NewProvider(opts.Tracing)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	if !tracerProvider.Enabled() {
		logger.Info("tracing disabled")
	}

	pipeline, cleanup, err := buildPipeline(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Register(engine, pipeline.handler, opts.HTTP.JWTSecret)

	logger.Infow("service ready", "addr", opts.HTTP.Addr, "demo_mode", opts.HTTP.DemoMode)
	return server.New(engine, opts.HTTP).Run()
}

// components groups everything the HTTP layer needs.
type components struct {
	handler *handler.Handler
}

// buildPipeline constructs the providers, stores and the query pipeline.
// In demo mode no providers are contacted and the handler serves fixed
// responses.
func buildPipeline(opts *Options) (*components, func(), error) {
	cleanups := make([]func(), 0, 4)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if opts.HTTP.DemoMode {
		h := handler.New(nil, nil, nil, nil, opts.Milvus.Collection, true)
		return &components{handler: h}, cleanup, nil
	}

	embedder, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return nil, nil, fmt.Errorf("embedding provider: %w", err)
	}
	chat, err := llm.NewChatProvider(opts.ChatLLM.Provider, opts.ChatLLM.ToConfigMap())
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("chat provider: %w", err)
	}

	var routerChat llm.ChatProvider
	if opts.Router.LLMConfigured() {
		routerChat, err = llm.NewChatProvider(opts.Router.LLM.Provider, opts.Router.LLM.ToConfigMap())
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("router provider: %w", err)
		}
	}

	var redisClient *goredis.Client
	if opts.Redis.Enabled {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     opts.Redis.Addr(),
			Password: opts.Redis.Password,
			DB:       opts.Redis.Database,
		})
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
		embedder = llm.NewCachedEmbeddingProvider(embedder, redisClient, nil)
		logger.Info("redis cache enabled")
	}

	milvusClient, err := milvus.New(opts.Milvus)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("milvus: %w", err)
	}
	cleanups = append(cleanups, func() { _ = milvusClient.Close(context.Background()) })
	vectorStore := store.NewMilvusStore(milvusClient)

	reranker, err := rerank.New(opts.Reranker, chat)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("reranker: %w", err)
	}
	if !reranker.Enabled() {
		logger.Info("reranker disabled")
	}

	histStore, err := history.Open(opts.History)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("history: %w", err)
	}
	if histStore != nil {
		cleanups = append(cleanups, func() { _ = histStore.Close() })
	}

	retriever := biz.NewRetriever(embedder, vectorStore, reranker, opts.Milvus.Collection, opts.Milvus.TopK, opts.Reranker.TopK)
	generator := biz.NewGenerator(chat, opts.SystemPrompt)
	classifier := biz.NewClassifier(opts.Router, routerChat)

	var cache *biz.AnswerCache
	if redisClient != nil {
		cache = biz.NewAnswerCache(redisClient, opts.Redis.TTL)
	}
	service := biz.NewService(classifier, retriever, generator, cache, opts.Router.Enabled, opts.Router.MinScore)

	indexer := biz.NewIndexer(embedder, vectorStore, splitter.New(opts.Splitter), opts.Milvus.Collection, opts.Milvus.EmbeddingDim)

	h := handler.New(service, indexer, vectorStore, histStore, opts.Milvus.Collection, false)
	return &components{handler: h}, cleanup, nil
}
