package messaging

import (
	"context"
	"log/slog"
	"time"
)

// None drops every message. It is selected when no broker is configured.
type None struct{}

func (None) Publish(ctx context.Context, destination string, msg Message) (PublishResult, error) {
	if err := validate(ctx, destination, false); err != nil {
		return PublishResult{}, err
	}
	slog.DebugContext(ctx, "messaging: no broker configured, message dropped", "topic", destination, "bytes", len(msg.Body))
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

func (None) Close() error { return nil }
