package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBus relays messages through Redis pub/sub so every API node sees them.
type RedisBus struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func NewRedisBus(client *redis.Client, logger *zap.Logger) *RedisBus {
	return &RedisBus{
		client: client,
		logger: logger,
		subs:   make(map[*subscription]struct{}),
	}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	pubsub := b.client.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	sub := newSubscription(nil)
	sub.stop = func() {
		pubsub.Close()
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}
	b.subs[sub] = struct{}{}

	go b.forward(pubsub.Channel(), sub)
	closeOnDone(ctx, sub)
	return sub, nil
}

func (b *RedisBus) forward(src <-chan *redis.Message, sub *subscription) {
	defer close(sub.ch)
	for {
		select {
		case <-sub.done:
			return
		case msg, ok := <-src:
			if !ok {
				return
			}
			select {
			case sub.ch <- Message{Topic: msg.Channel, Payload: json.RawMessage(msg.Payload)}:
			case <-sub.done:
				return
			default:
				b.logger.Warn("dropping event for slow subscriber", zap.String("topic", msg.Channel))
			}
		}
	}
}

// Close ends every subscription. The Redis client is owned by the caller.
func (b *RedisBus) Close() error {
	b.mu.Lock()
	b.closed = true
	all := make([]*subscription, 0, len(b.subs))
	for sub := range b.subs {
		all = append(all, sub)
	}
	b.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}
