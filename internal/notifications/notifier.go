// Package notifications provides real-time event delivery over Redis pub/sub
// and WebSocket fan-out.
package notifications

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// Redis channels used for event fan-out.
const (
	ConversationChannel = "events:conversation"
	ModerationChannel   = "events:moderation"
)

// Event is the envelope published on the event channels.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Notifier publishes application events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends an event on the given channel. A nil Redis client is a no-op.
func (n *Notifier) Publish(ctx context.Context, channel, eventType string, payload interface{}) error {
	if n.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, channel, string(raw)).Err()
}

// NotifyFunc adapts the Notifier into the fire-and-forget callback the
// services accept. Publish failures are logged and swallowed; a notification
// must never fail the operation that produced it.
func (n *Notifier) NotifyFunc() func(ctx context.Context, event string, payload interface{}) {
	return func(ctx context.Context, event string, payload interface{}) {
		channel := ModerationChannel
		if event == "message_created" {
			channel = ConversationChannel
		}
		if err := n.Publish(ctx, channel, event, payload); err != nil {
			slog.WarnContext(ctx, "failed to publish event",
				slog.String("event", event),
				slog.String("error", err.Error()),
			)
		}
	}
}

// StartEventSubscriber subscribes to the conversation and moderation channels
// and calls onMessage for each incoming message.
func (n *Notifier) StartEventSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ConversationChannel, ModerationChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in EventSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}
