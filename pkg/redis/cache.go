package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON-typed caching utilities on top of Client
// ⭐ SSOT: 캐시 헬퍼는 여기서만
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. found=false on miss or when Redis is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}
	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// Predefined TTLs
const (
	TTLRanking   = 1 * time.Minute // 실시간 순위
	TTLDailyBars = 6 * time.Hour   // 장중 일봉 (당일 봉은 갱신됨)
	TTLFinancial = 24 * time.Hour  // 재무비율
)

// DailyBarsKey is the cache key for the recent daily bars of code
func DailyBarsKey(code string, limit int, date string) string {
	return fmt.Sprintf("bars:%s:%d:%s", code, limit, date)
}

// FinancialKey is the cache key for the financial ratio of code
func FinancialKey(code string, date string) string {
	return fmt.Sprintf("financial:%s:%s", code, date)
}

// RankingKey is the cache key for a ranking list
func RankingKey(kind string) string {
	return fmt.Sprintf("ranking:%s", kind)
}
