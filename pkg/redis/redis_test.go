package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsooNa/Investment-sub000/pkg/config"
)

func TestNew_Disabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_DisabledIsNoop(t *testing.T) {
	cache := NewCache(NewDisabled(), "test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	found, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "bars:005930:90:20240105", DailyBarsKey("005930", 90, "20240105"))
	assert.Equal(t, "financial:005930:20240105", FinancialKey("005930", "20240105"))
	assert.Equal(t, "ranking:gainers", RankingKey("gainers"))
}

func TestCache_Integration(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}

	client, err := New(context.Background(), config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	})
	require.NoError(t, err)
	defer client.Close()

	cache := NewCache(client, "it")
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "k", []int{1, 2, 3}, time.Minute))

	var got []int
	found, err := cache.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2, 3}, got)
	require.NoError(t, cache.Delete(ctx, "k"))
}
