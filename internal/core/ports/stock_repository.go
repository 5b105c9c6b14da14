package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
)

// StockRepository persists stock levels. Only services.StockLedger writes
// through it.
type StockRepository interface {
	// Get returns the level without locking. A missing row reads as an empty level.
	Get(ctx context.Context, location kernel.StockLocation, productID kernel.UUID) (*stock.Level, error)

	// GetForUpdate creates the row with quantity 0 when missing and takes an
	// exclusive row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, location kernel.StockLocation, productID kernel.UUID) (*stock.Level, error)

	// Save writes the quantity of a level previously read with GetForUpdate.
	Save(ctx context.Context, level *stock.Level) error
}

// MovementRepository is the append-only movement log.
type MovementRepository interface {
	Append(ctx context.Context, movement *stock.Movement) error
}
