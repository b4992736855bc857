package events

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MemoryBus fans messages out to subscribers of the same process.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	closed bool
	logger *zap.Logger
}

func NewMemoryBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		subs:   make(map[string]map[*subscription]struct{}),
		logger: logger,
	}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subs[topic] {
		select {
		case sub.ch <- Message{Topic: topic, Payload: data}:
		default:
			b.logger.Warn("dropping event for slow subscriber", zap.String("topic", topic))
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	sub := newSubscription(nil)
	sub.stop = func() { b.remove(topic, sub) }

	room := b.subs[topic]
	if room == nil {
		room = make(map[*subscription]struct{})
		b.subs[topic] = room
	}
	room[sub] = struct{}{}

	closeOnDone(ctx, sub)
	return sub, nil
}

func (b *MemoryBus) remove(topic string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	room, ok := b.subs[topic]
	if !ok {
		return
	}
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(b.subs, topic)
	}
	close(sub.ch)
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	var all []*subscription
	for _, room := range b.subs {
		for sub := range room {
			all = append(all, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
	return nil
}
