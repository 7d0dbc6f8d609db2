package realtime

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/taskboard/taskboard-api/internal/logging"
)

const redisChannel = "taskboard:events"

// RedisBridge is a Broadcaster that routes events through a Redis pub/sub
// channel so multiple API instances share one event stream. Events received
// from the channel, including this instance's own, are fanned into the local
// hub.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
}

// NewRedisBridge connects to Redis and wraps the given hub.
func NewRedisBridge(addr string, hub *Hub) *RedisBridge {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &RedisBridge{
		client: client,
		hub:    hub,
	}
}

// Publish sends the event to the Redis channel. Transport failures are
// logged, never surfaced: the originating mutation has already committed.
func (b *RedisBridge) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Logger.Errorw("failed to encode event", "error", err)
		return
	}

	if err := b.client.Publish(context.Background(), redisChannel, data).Err(); err != nil {
		logging.Logger.Errorw("failed to publish event to redis", "error", err)
	}
}

// Run subscribes to the Redis channel and forwards incoming events to the
// local hub until the context is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logging.Logger.Errorw("failed to decode event from redis", "error", err)
				continue
			}
			b.hub.Publish(event)
		}
	}
}
