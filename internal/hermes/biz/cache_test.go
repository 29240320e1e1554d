package biz_test

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/kart-io/hermes/internal/hermes/biz"
)

func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("redis unavailable, skipping")
	}
	client.FlushDB(ctx)
	return client
}

func TestAnswerCacheNilClient(t *testing.T) {
	cache := biz.NewAnswerCache(nil, time.Hour)
	ctx := context.Background()

	assert.Nil(t, cache.Get(ctx, "ερώτηση"))
	// Put must be a harmless no-op.
	cache.Put(ctx, "ερώτηση", &biz.QueryOutcome{Mode: biz.ModeRAG, Answer: "απάντηση"})
	assert.Nil(t, cache.Get(ctx, "ερώτηση"))
}

func TestAnswerCacheRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := biz.NewAnswerCache(client, time.Hour)
	ctx := context.Background()

	outcome := &biz.QueryOutcome{
		Answer:   "Η άδεια εγκρίνεται από τον διοικητή.",
		CtxTexts: []string{"απόσπασμα"},
		Scores:   []float64{0.82},
		Metas:    []map[string]any{{"source": "kanonismos.txt"}},
		Mode:     biz.ModeRAG,
		Label:    biz.LabelNeedRAG,
	}
	cache.Put(ctx, "Ποιες είναι οι διαδικασίες αδείας;", outcome)

	got := cache.Get(ctx, "Ποιες είναι οι διαδικασίες αδείας;")
	assert.Equal(t, outcome, got)
	assert.Nil(t, cache.Get(ctx, "άλλη ερώτηση"))
}

func TestAnswerCacheSkipsNonRAGOutcomes(t *testing.T) {
	client := setupTestRedis(t)
	defer func() { _ = client.Close() }()

	cache := biz.NewAnswerCache(client, time.Hour)
	ctx := context.Background()

	cache.Put(ctx, "Γεια σου", &biz.QueryOutcome{Mode: biz.ModeChat, Answer: "Γεια!"})
	assert.Nil(t, cache.Get(ctx, "Γεια σου"))
}
