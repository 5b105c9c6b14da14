package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates and
// their action log.
type OrderRepository interface {
	// Add persists a new order with its lines.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the status change of an existing order. Lines are immutable
	// and never rewritten.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order without locking.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate retrieves an order and locks its row, serializing concurrent
	// transitions of the same order.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// AppendActionLog writes one audit row.
	AppendActionLog(ctx context.Context, entry *order.ActionLog) error
}
