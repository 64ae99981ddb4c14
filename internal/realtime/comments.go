package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"tastebook/internal/model"
)

// commentChannel returns the Pub/Sub channel for a recipe's live comments.
func commentChannel(recipeID int64) string {
	return fmt.Sprintf("comments:recipe:%d", recipeID)
}

// CommentBroker fans out newly created comments to live subscribers of a
// recipe. Publish and Subscribe may run in different processes; the broker
// carries the comment across instance boundaries.
type CommentBroker interface {
	// Publish broadcasts a comment to everyone subscribed to its recipe.
	Publish(ctx context.Context, comment *model.RecipeComment) error

	// Subscribe opens a live comment stream for one recipe. The returned
	// subscription delivers comments until Close is called or ctx is done.
	Subscribe(ctx context.Context, recipeID int64) (*CommentSubscription, error)
}

// CommentSubscription is a live stream of comments for one recipe.
type CommentSubscription struct {
	// C delivers comments as they are published. Closed when the
	// subscription ends.
	C <-chan *model.RecipeComment

	pubsub *redis.PubSub
	cancel context.CancelFunc
}

// Close tears down the subscription and releases the underlying channel.
// Safe to call more than once.
func (s *CommentSubscription) Close() error {
	s.cancel()
	return s.pubsub.Close()
}

// RedisCommentBroker implements CommentBroker on Redis Pub/Sub with one
// channel per recipe.
type RedisCommentBroker struct {
	client *redis.Client
}

// NewCommentBroker creates a CommentBroker backed by Redis Pub/Sub.
func NewCommentBroker(client *redis.Client) *RedisCommentBroker {
	return &RedisCommentBroker{client: client}
}

// Publish broadcasts the comment to the recipe's channel.
// Pub/Sub is fire-and-forget: subscribers connected right now receive it,
// nobody else does. The comment is already persisted before this runs.
func (b *RedisCommentBroker) Publish(ctx context.Context, comment *model.RecipeComment) error {
	payload, err := json.Marshal(comment)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	channel := commentChannel(comment.RecipeID)
	receivers, err := b.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		log.Printf("[CommentBroker] Publish FAILED: recipe=%d comment=%d err=%v",
			comment.RecipeID, comment.ID, err)
		return fmt.Errorf("publish comment: %w", err)
	}

	log.Printf("[CommentBroker] Publish OK: recipe=%d comment=%d receivers=%d",
		comment.RecipeID, comment.ID, receivers)
	return nil
}

// Subscribe opens a Pub/Sub subscription for the recipe and pumps decoded
// comments into the returned channel until the context is cancelled or the
// subscription is closed.
func (b *RedisCommentBroker) Subscribe(ctx context.Context, recipeID int64) (*CommentSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := b.client.Subscribe(subCtx, commentChannel(recipeID))

	// Receive confirms the subscription is established before we return,
	// so a comment published right after Subscribe is not lost.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		pubsub.Close()
		return nil, fmt.Errorf("subscribe comments: %w", err)
	}

	out := make(chan *model.RecipeComment)

	go func() {
		defer close(out)
		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var comment model.RecipeComment
				if err := json.Unmarshal([]byte(msg.Payload), &comment); err != nil {
					log.Printf("[CommentBroker] decode error: recipe=%d err=%v", recipeID, err)
					continue
				}
				select {
				case out <- &comment:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	log.Printf("[CommentBroker] Subscribe: recipe=%d", recipeID)
	return &CommentSubscription{
		C:      out,
		pubsub: pubsub,
		cancel: cancel,
	}, nil
}
