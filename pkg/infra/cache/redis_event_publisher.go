package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/channel"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/event"
)

type redisEventPublisher struct {
	cache   Client
	channel channel.Channel
}

func NewRedisEventPublisher(cache Client, channel channel.Channel) EventPublisher {
	return &redisEventPublisher{
		cache:   cache,
		channel: channel,
	}
}

func (p *redisEventPublisher) Publish(ctx context.Context, ev event.Event) error {
	data, err := encodeMessage(ev)
	if err != nil {
		return err
	}
	if err := p.cache.RedisClient().Publish(ctx, string(p.channel), data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s: %w", ev.Type(), err)
	}
	return nil
}

func encodeMessage(ev event.Event) ([]byte, error) {
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return json.Marshal(RedisMessage{
		Type:  ev.Type(),
		Event: b,
	})
}

// noopPublisher is used when Redis is disabled; reloads stay local.
type noopPublisher struct{}

func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, event.Event) error {
	return nil
}
