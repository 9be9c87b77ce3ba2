package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus carries events between instances over a redis pub/sub channel.
// Every instance subscribes and hands what it receives to its own hub.
type RedisBus struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

func NewRedisBus(client *redis.Client, channel string, hub *Hub, log *zap.Logger) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		hub:     hub,
		log:     log.With(zap.String("component", "redis_bus"), zap.String("channel", channel)),
	}
}

func (b *RedisBus) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Run blocks until ctx is cancelled.
func (b *RedisBus) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info("Subscribed to notification channel")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(msg.Payload)
		}
	}
}

func (b *RedisBus) handle(payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		b.log.Warn("Dropping malformed event", zap.Error(err))
		return
	}
	if err := b.hub.deliver(event); err != nil {
		b.log.Warn("Failed to deliver event", zap.Error(err), zap.String("notification_id", event.ID))
	}
}
