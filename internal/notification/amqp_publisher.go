package notification

import (
	"context"
)

// JSONPublisher is satisfied by messaging.Publisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// AMQPPublisher streams every notification to the broker so other services
// (mail, push, analytics) can consume them.
type AMQPPublisher struct {
	pub JSONPublisher
}

func NewAMQPPublisher(pub JSONPublisher) *AMQPPublisher {
	return &AMQPPublisher{pub: pub}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	return p.pub.PublishJSON(ctx, RoutingKey(event), event)
}

func RoutingKey(event Event) string {
	return "notification." + string(event.Type)
}
