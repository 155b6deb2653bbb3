package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// Publisher publishes lifecycle events to Redis. Events are observational:
// publishing is fire-and-forget and a nil Publisher (no Redis configured)
// drops them silently.
type Publisher struct {
	rdb *redis.Client
}

// NewPublisher creates a Publisher over the given Redis client.
func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish marshals payload and publishes it on the events channel. Failures
// are logged, never returned; the move path must not depend on Redis.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) {
	if p == nil || p.rdb == nil {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event payload", "event.type", eventType, "error", err)
		return
	}
	event, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling event", "event.type", eventType, "error", err)
		return
	}

	if err := p.rdb.Publish(ctx, EventsChannel, event).Err(); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "event.type", eventType, "error", err)
	}
}
