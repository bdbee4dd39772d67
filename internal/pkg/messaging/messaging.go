package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrDestinationRequired = errors.New("messaging: destination is required")
	ErrClosed              = errors.New("messaging: publisher is closed")
)

type Publisher interface {
	io.Closer
	Publish(ctx context.Context, destination string, msg Message) (PublishResult, error)
}

// Message is a broker-agnostic outgoing message.
type Message struct {
	Body []byte
	// Key is used by Kafka for partitioning and by Pub/Sub as the ordering key.
	Key     []byte
	Headers map[string]string
}

type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

func validate(ctx context.Context, destination string, closed bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	if closed {
		return ErrClosed
	}
	return nil
}
