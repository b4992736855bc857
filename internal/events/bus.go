// Package events carries in-process and cross-node publish/subscribe traffic,
// such as freshly created posts pushed to live subscribers.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var ErrClosed = errors.New("event bus closed")

type Message struct {
	Topic   string
	Payload json.RawMessage
}

// Decode unmarshals the payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

type Subscription interface {
	Events() <-chan Message
	Close() error
}

// Bus is owned by main: built at startup, injected where needed and closed
// on shutdown. Subscriptions end when their context is cancelled.
type Bus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}

const subscriptionBuffer = 16

type subscription struct {
	ch   chan Message
	done chan struct{}
	once sync.Once
	stop func()
}

func newSubscription(stop func()) *subscription {
	return &subscription{
		ch:   make(chan Message, subscriptionBuffer),
		done: make(chan struct{}),
		stop: stop,
	}
}

func (s *subscription) Events() <-chan Message {
	return s.ch
}

// Close is idempotent. The events channel is closed by whoever sends on it.
func (s *subscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		if s.stop != nil {
			s.stop()
		}
	})
	return nil
}

// closeOnDone closes sub once ctx is cancelled.
func closeOnDone(ctx context.Context, sub *subscription) {
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
}
