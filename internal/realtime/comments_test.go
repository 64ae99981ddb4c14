package realtime_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"tastebook/internal/model"
	"tastebook/internal/realtime"
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

func TestCommentBroker_PublishReachesSubscriber(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	broker := realtime.NewCommentBroker(client)

	sub, err := broker.Subscribe(ctx, 42)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	comment := &model.RecipeComment{ID: 55, RecipeID: 42, UserID: 7, Content: "Looks amazing"}
	if err := broker.Publish(ctx, comment); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-sub.C:
		if got.ID != 55 || got.Content != "Looks amazing" {
			t.Errorf("unexpected comment: %+v", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for comment")
	}
}

func TestCommentBroker_ChannelsAreScopedPerRecipe(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	broker := realtime.NewCommentBroker(client)

	sub, err := broker.Subscribe(ctx, 1)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	// A comment on a different recipe must not reach this subscriber.
	if err := broker.Publish(ctx, &model.RecipeComment{ID: 9, RecipeID: 2, Content: "other"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := broker.Publish(ctx, &model.RecipeComment{ID: 10, RecipeID: 1, Content: "mine"}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-sub.C:
		if got.ID != 10 {
			t.Errorf("received comment %d, expected only comment 10", got.ID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for comment")
	}
}

func TestCommentBroker_CloseEndsStream(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	broker := realtime.NewCommentBroker(client)

	sub, err := broker.Subscribe(ctx, 42)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := sub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("expected channel to be closed, got a comment")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("channel was not closed after Close")
	}
}
