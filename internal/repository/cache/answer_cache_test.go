package cache

import (
	"context"
	"testing"
	"time"

	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/shopping"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*AnswerCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAnswerCache(rdb, ttl), mr
}

func sampleState() *graph.State {
	return &graph.State{
		Query:  "organic shampoo under $20",
		Task:   shopping.TaskProductSearch,
		Answer: "GreenLeaf Organic Shampoo costs $12.99 [DOC 1].",
		RetrievedDocs: []shopping.ProductRecord{
			{DocID: "p1", Title: "GreenLeaf Organic Shampoo", Price: 12.99, Source: shopping.OriginRAG},
		},
		Citations: []string{"DOC 1"},
	}
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "organic shampoo under $20", NormalizeQuery("  Organic   SHAMPOO under $20 "))
	assert.Equal(t, Key("Organic shampoo"), Key("organic  shampoo"))
	assert.NotEqual(t, Key("organic shampoo"), Key("vegan soap"))
}

func TestAnswerCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "organic shampoo under $20")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "organic shampoo under $20", sampleState()))

	got, ok, err := c.Get(ctx, "ORGANIC shampoo under $20")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "GreenLeaf Organic Shampoo costs $12.99 [DOC 1].", got.Answer)
	assert.Equal(t, []string{"DOC 1"}, got.Citations)
	assert.Equal(t, 12.99, got.RetrievedDocs[0].Price)
}

func TestAnswerCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "soap", sampleState()))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "soap")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAnswerCache_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(Key("soap"), "{not json"))

	_, ok, err := c.Get(context.Background(), "soap")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(Key("soap")))
}

func TestAnswerCache_Flush(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "soap", sampleState()))
	require.NoError(t, c.Set(ctx, "shampoo", sampleState()))
	require.NoError(t, mr.Set("unrelated", "keep"))

	n, err := c.Flush(ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("unrelated"))
}

func TestAnswerCache_RedisDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "soap")

	assert.Error(t, err)
}
