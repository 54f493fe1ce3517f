package services

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
	"github.com/AnshRaj112/lighttribe-backend/internal/models"
)

const (
	EventTypeComment = "comment"
	EventTypePing    = "ping"
)

// CommentEvent is the payload broadcast over Redis and the websocket.
type CommentEvent struct {
	Type      string              `json:"type"`
	PostID    string              `json:"postId,omitempty"`
	Comment   *models.CommentView `json:"comment,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// LiveFeed fans new comments out to every instance through Redis Pub/Sub.
type LiveFeed struct {
	rdb *redis.Client
}

func NewLiveFeed(rdb *redis.Client) *LiveFeed {
	return &LiveFeed{rdb: rdb}
}

// Enabled reports whether a Redis client is configured.
func (f *LiveFeed) Enabled() bool {
	return f != nil && f.rdb != nil
}

func commentChannel(postID string) string {
	return "post:" + postID + ":comments"
}

// Publish announces a new comment. Without Redis it does nothing.
func (f *LiveFeed) Publish(ctx context.Context, postID string, comment *models.CommentView) error {
	if !f.Enabled() {
		return nil
	}
	data, err := json.Marshal(CommentEvent{
		Type:      EventTypeComment,
		PostID:    postID,
		Comment:   comment,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, commentChannel(postID), data).Err()
}

// Subscribe streams comment events for postID until ctx is done. The
// returned channel is closed when the subscription ends.
func (f *LiveFeed) Subscribe(ctx context.Context, postID string) (<-chan CommentEvent, error) {
	if !f.Enabled() {
		return nil, fmt.Errorf("live comments: %w", ErrUnavailable)
	}

	pubsub := f.rdb.Subscribe(ctx, commentChannel(postID))
	// wait for the subscription confirmation so no event published after
	// Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan CommentEvent, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt CommentEvent
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					logging.Warn().Err(err).Msg("failed to unmarshal comment event")
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
