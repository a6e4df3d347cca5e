package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// LogPublisher writes events to the structured log. It stands in for the broker when
// none is configured.
type LogPublisher struct{}

func (LogPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	slog.InfoContext(ctx, "Event published", "topic", topic, "key", key, "payload", string(payload))
	return nil
}
