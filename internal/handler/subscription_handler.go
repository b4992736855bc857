package handler

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"human-connection/internal/domain"
	"human-connection/internal/events"
)

const keepAliveInterval = 25 * time.Second

type SubscriptionHandler struct {
	bus       events.Bus
	logger    *zap.Logger
	keepAlive time.Duration
}

func NewSubscriptionHandler(bus events.Bus, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{bus: bus, logger: logger, keepAlive: keepAliveInterval}
}

// PostAdded streams newly created posts as server-sent events. With ?id= only
// the post with that id is delivered.
func (h *SubscriptionHandler) PostAdded(c *fiber.Ctx) error {
	postID := c.Query("id")

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := h.bus.Subscribe(ctx, domain.PostAddedTopic)
	if err != nil {
		cancel()
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer sub.Close()

		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()

		fmt.Fprint(w, ": subscribed\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case msg, ok := <-sub.Events():
				if !ok {
					return
				}
				var added domain.PostAdded
				if err := msg.Decode(&added); err != nil || added.Post == nil {
					h.logger.Debug("dropping malformed post_added event", zap.Error(err))
					continue
				}
				if postID != "" && added.Post.ID != postID {
					continue
				}
				fmt.Fprintf(w, "event: postAdded\ndata: %s\n\n", msg.Payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})

	return nil
}
