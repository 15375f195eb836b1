package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/saticiyiz/forum-backend/internal/models"
	"go.uber.org/zap"
)

const channelPrefix = "notifications:"

// Publisher pushes freshly inserted notifications onto the realtime feed.
type Publisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

// Handle is an open per-user subscription. Unsubscribe is idempotent.
type Handle interface {
	Unsubscribe()
}

// Subscriber delivers insert events for one user's notifications, in the
// order the transport delivers them.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string, fn func(models.Notification)) (Handle, error)
}

// RedisBridge implements Publisher and Subscriber over Redis pub/sub,
// one channel per recipient.
type RedisBridge struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisBridge(rdb *redis.Client, logger *zap.Logger) *RedisBridge {
	return &RedisBridge{rdb: rdb, logger: logger}
}

func (b *RedisBridge) PublishNotification(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelPrefix+n.UserID, payload).Err()
}

type redisHandle struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
}

func (h *redisHandle) Unsubscribe() {
	h.cancel()
	_ = h.pubsub.Close()
}

// Subscribe opens the user's channel and pumps decoded notifications into fn
// until the handle is unsubscribed. Undecodable payloads are logged and
// skipped.
func (b *RedisBridge) Subscribe(ctx context.Context, userID string, fn func(models.Notification)) (Handle, error) {
	subCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	pubsub := b.rdb.Subscribe(subCtx, channelPrefix+userID)

	// force the subscription to be established before returning
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				b.logger.Warn("dropping undecodable realtime payload",
					zap.String("user_id", userID),
					zap.Error(err))
				continue
			}
			fn(n)
		}
	}()

	return &redisHandle{pubsub: pubsub, cancel: cancel}, nil
}
