package biz

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/hermes/internal/hermes/metrics"
	"github.com/kart-io/hermes/internal/pkg/rag/textutil"
)

const answerKeyPrefix = "answer:"

// AnswerCache caches fulfilled rag-mode outcomes in Redis, keyed by the
// hashed question. Cache failures are logged and degrade to a miss; they
// never fail the request.
type AnswerCache struct {
	redis *goredis.Client
	ttl   time.Duration
}

// NewAnswerCache creates an AnswerCache. redis may be nil, in which case
// every lookup misses and stores are dropped.
func NewAnswerCache(redis *goredis.Client, ttl time.Duration) *AnswerCache {
	return &AnswerCache{redis: redis, ttl: ttl}
}

func (c *AnswerCache) key(question string) string {
	return answerKeyPrefix + textutil.HashString(question)
}

// Get returns the cached outcome for the question, or nil on a miss.
func (c *AnswerCache) Get(ctx context.Context, question string) *QueryOutcome {
	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, c.key(question)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("answer cache read failed", "error", err)
		}
		metrics.Get().RecordCache(false)
		return nil
	}

	var outcome QueryOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		logger.Warnw("answer cache entry corrupt, dropping", "error", err)
		metrics.Get().RecordCache(false)
		return nil
	}
	metrics.Get().RecordCache(true)
	return &outcome
}

// Put stores a fulfilled outcome. Only rag-mode outcomes are cached: chat
// answers vary by design and guardrail answers are cheap fixed strings.
func (c *AnswerCache) Put(ctx context.Context, question string, outcome *QueryOutcome) {
	if c.redis == nil || outcome == nil || outcome.Mode != ModeRAG {
		return
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		logger.Warnw("answer cache marshal failed", "error", err)
		return
	}
	if err := c.redis.Set(ctx, c.key(question), data, c.ttl).Err(); err != nil {
		logger.Warnw("answer cache write failed", "error", err)
	}
}
