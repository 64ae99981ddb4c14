package cache_test

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"tastebook/internal/cache"
)

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)

	return client
}

func cleanupTestRedis(client *redis.Client) {
	client.FlushDB(context.Background())
	client.Close()
}

func TestFeedCache_AddAndPage(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)

	for i := int64(1); i <= 5; i++ {
		if err := feedCache.AddRecipe(ctx, i, 1000*i); err != nil {
			t.Fatalf("AddRecipe failed: %v", err)
		}
	}

	ids, scores, err := feedCache.GetPage(ctx, nil, 3)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	if len(ids) != 3 {
		t.Fatalf("expected 3 IDs, got %d", len(ids))
	}
	// Newest first
	want := []int64{5, 4, 3}
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("position %d: expected recipe %d, got %d", i, want[i], id)
		}
	}
	if scores[0] != 5000 {
		t.Errorf("expected score 5000 first, got %f", scores[0])
	}
}

func TestFeedCache_CursorIsExclusive(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)

	if err := feedCache.WarmCache(ctx, []cache.RecipeScore{
		{RecipeID: 1, Timestamp: 1000},
		{RecipeID: 2, Timestamp: 2000},
		{RecipeID: 3, Timestamp: 3000},
	}); err != nil {
		t.Fatalf("WarmCache failed: %v", err)
	}

	cursor := float64(3000)
	ids, _, err := feedCache.GetPage(ctx, &cursor, 10)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}

	// Strictly older than the cursor: recipe 3 itself is excluded.
	if len(ids) != 2 || ids[0] != 2 || ids[1] != 1 {
		t.Errorf("expected [2 1], got %v", ids)
	}
}

func TestFeedCache_ExistsAfterWarm(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	feedCache := cache.NewFeedCache(client)

	exists, err := feedCache.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected cold cache before warm")
	}

	if err := feedCache.WarmCache(ctx, []cache.RecipeScore{{RecipeID: 1, Timestamp: 1000}}); err != nil {
		t.Fatalf("WarmCache failed: %v", err)
	}

	exists, err = feedCache.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected cache to exist after warm")
	}
}
