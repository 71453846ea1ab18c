package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LoggingPublisher stands in for the broker when no Kafka brokers are set.
// Payloads are logged inline so dev runs show what would have been sent.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger.With("module", "events", "layer", "adapter")}
}

func (p *LoggingPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	fields := []any{
		"operation", "publish_event",
		"outcome", "success",
		"event_type", eventType,
		"topic", topicFor(DefaultTopics, eventType),
		"partition_key", partitionKey,
	}
	if json.Valid(payload) {
		fields = append(fields, "payload", json.RawMessage(payload))
	} else {
		fields = append(fields, "payload_bytes", len(payload))
	}
	p.logger.InfoContext(ctx, "event published to log", fields...)
	return nil
}
