package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/outbox"
)

// OutboxRepository stores integration events until they are relayed.
type OutboxRepository interface {
	Add(ctx context.Context, message *outbox.Message) error
	ListPending(ctx context.Context, limit int) ([]*outbox.Message, error)
	MarkSent(ctx context.Context, id kernel.UUID, sentAt time.Time) error
	IncrementRetries(ctx context.Context, id kernel.UUID) error
}

// EventPublisher delivers one message to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}
