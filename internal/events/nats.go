package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSBus publishes on core NATS subjects named after the topic.
type NATSBus struct {
	conn   *nats.Conn
	logger *zap.Logger

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func NewNATSBus(conn *nats.Conn, logger *zap.Logger) *NATSBus {
	return &NATSBus{
		conn:   conn,
		logger: logger,
		subs:   make(map[*subscription]struct{}),
	}
}

func (b *NATSBus) Publish(_ context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.conn.Publish(topic, data)
}

func (b *NATSBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	src := make(chan *nats.Msg, subscriptionBuffer)
	natsSub, err := b.conn.ChanSubscribe(topic, src)
	if err != nil {
		return nil, err
	}

	sub := newSubscription(nil)
	sub.stop = func() {
		if err := natsSub.Unsubscribe(); err != nil {
			b.logger.Debug("unsubscribe failed", zap.String("topic", topic), zap.Error(err))
		}
		b.mu.Lock()
		delete(b.subs, sub)
		b.mu.Unlock()
	}
	b.subs[sub] = struct{}{}

	go b.forward(src, sub)
	closeOnDone(ctx, sub)
	return sub, nil
}

func (b *NATSBus) forward(src <-chan *nats.Msg, sub *subscription) {
	defer close(sub.ch)
	for {
		select {
		case <-sub.done:
			return
		case msg := <-src:
			select {
			case sub.ch <- Message{Topic: msg.Subject, Payload: json.RawMessage(msg.Data)}:
			case <-sub.done:
				return
			default:
				b.logger.Warn("dropping event for slow subscriber", zap.String("topic", msg.Subject))
			}
		}
	}
}

// Close ends every subscription and flushes pending publishes. The
// connection itself is closed by its owner.
func (b *NATSBus) Close() error {
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
	return b.conn.Flush()
}
