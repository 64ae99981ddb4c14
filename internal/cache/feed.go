package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// FeedKey is the sorted set holding the global latest-recipes feed.
	FeedKey = "feed:recipes:latest"

	// FeedCacheCap is the maximum number of recipes kept in the feed cache
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for the feed cache (7 days)
	FeedCacheTTL = 7 * 24 * time.Hour
)

// RecipeScore represents a recipe with its creation timestamp used as the
// sorted-set score.
type RecipeScore struct {
	RecipeID  int64
	Timestamp int64 // Unix timestamp
}

// FeedCache defines the interface for feed cache operations.
// Using an interface enables testing with mocks and potential future backends.
type FeedCache interface {
	// AddRecipe adds a recipe to the feed cache.
	// Uses pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL)
	AddRecipe(ctx context.Context, recipeID int64, timestamp int64) error

	// GetPage retrieves recipe IDs from the feed cache.
	// If cursorScore is nil, returns the newest recipes. Otherwise returns
	// recipes strictly older than the cursor.
	GetPage(ctx context.Context, cursorScore *float64, limit int) (recipeIDs []int64, scores []float64, err error)

	// WarmCache bulk-inserts recipes into the feed cache.
	// Uses a pipelined ZADD + EXPIRE for efficiency.
	WarmCache(ctx context.Context, recipes []RecipeScore) error

	// Size returns the number of recipes currently cached.
	Size(ctx context.Context) (int64, error)

	// Exists checks whether the feed cache key is present.
	// Returns false on a cold cache (fresh deploy or TTL expiry); the
	// service layer warms the cache when this returns false.
	Exists(ctx context.Context) (bool, error)
}

// RedisFeedCache implements FeedCache using a Redis Sorted Set.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a new FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

// AddRecipe adds a recipe to the feed cache using a pipeline.
// Pipeline: ZADD + ZREMRANGEBYRANK (trim to cap) + EXPIRE (refresh TTL)
func (c *RedisFeedCache) AddRecipe(ctx context.Context, recipeID int64, timestamp int64) error {
	startTime := time.Now()

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, FeedKey, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(recipeID, 10),
	})

	// Maintain cap: drop the oldest entries beyond FeedCacheCap.
	// ZREMRANGEBYRANK removes [start, stop] inclusive, rank 0 is the oldest.
	pipe.ZRemRangeByRank(ctx, FeedKey, 0, int64(-FeedCacheCap-1))

	pipe.Expire(ctx, FeedKey, FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] AddRecipe FAILED: recipe=%d err=%v", recipeID, err)
		return fmt.Errorf("add recipe to feed: %w", err)
	}

	log.Printf("[FeedCache] AddRecipe OK: recipe=%d timestamp=%d duration=%v",
		recipeID, timestamp, time.Since(startTime))
	return nil
}

// GetPage retrieves recipe IDs from the feed cache.
// If cursorScore is nil, returns the newest recipes (ZREVRANGE).
// With a cursor, returns recipes with score < cursorScore (ZREVRANGEBYSCORE).
func (c *RedisFeedCache) GetPage(ctx context.Context, cursorScore *float64, limit int) ([]int64, []float64, error) {
	startTime := time.Now()

	var results []redis.Z
	var err error

	if cursorScore == nil {
		results, err = c.client.ZRevRangeWithScores(ctx, FeedKey, 0, int64(limit-1)).Result()
	} else {
		results, err = c.client.ZRevRangeByScoreWithScores(ctx, FeedKey, &redis.ZRangeBy{
			Min:    "-inf",
			Max:    fmt.Sprintf("(%f", *cursorScore), // exclusive
			Offset: 0,
			Count:  int64(limit),
		}).Result()
	}

	if err != nil {
		log.Printf("[FeedCache] GetPage FAILED: err=%v", err)
		return nil, nil, fmt.Errorf("get feed page: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, FeedKey, FeedCacheTTL)

	recipeIDs := make([]int64, len(results))
	scores := make([]float64, len(results))

	for i, z := range results {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			log.Printf("[FeedCache] GetPage parse error: member=%v err=%v", z.Member, err)
			return nil, nil, fmt.Errorf("parse recipe id: %w", err)
		}
		recipeIDs[i] = id
		scores[i] = z.Score
	}

	log.Printf("[FeedCache] GetPage OK: returned=%d duration=%v",
		len(recipeIDs), time.Since(startTime))
	return recipeIDs, scores, nil
}

// WarmCache bulk-inserts recipes into the feed cache using a pipeline.
func (c *RedisFeedCache) WarmCache(ctx context.Context, recipes []RecipeScore) error {
	if len(recipes) == 0 {
		log.Printf("[FeedCache] WarmCache: recipes=0 (nothing to warm)")
		return nil
	}

	startTime := time.Now()

	pipe := c.client.Pipeline()

	members := make([]redis.Z, len(recipes))
	for i, r := range recipes {
		members[i] = redis.Z{
			Score:  float64(r.Timestamp),
			Member: strconv.FormatInt(r.RecipeID, 10),
		}
	}
	pipe.ZAdd(ctx, FeedKey, members...)

	// Maintain cap after bulk insert
	pipe.ZRemRangeByRank(ctx, FeedKey, 0, int64(-FeedCacheCap-1))

	pipe.Expire(ctx, FeedKey, FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: recipes=%d err=%v", len(recipes), err)
		return fmt.Errorf("warm feed cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: recipes=%d duration=%v",
		len(recipes), time.Since(startTime))
	return nil
}

// Size returns the number of recipes in the feed cache.
func (c *RedisFeedCache) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, FeedKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get feed cache size: %w", err)
	}
	return size, nil
}

// Exists checks if the feed cache key is present.
func (c *RedisFeedCache) Exists(ctx context.Context) (bool, error) {
	exists, err := c.client.Exists(ctx, FeedKey).Result()
	if err != nil {
		return false, fmt.Errorf("check feed cache exists: %w", err)
	}
	return exists > 0, nil
}
