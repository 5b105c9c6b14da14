package stock

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var ErrLevelIsNotConstructed = errors.New("Level must be created via NewLevel or RestoreLevel")

// Level is the quantity on hand of one product at one location.
// Quantity is never negative.
type Level struct {
	location  kernel.StockLocation
	productID kernel.UUID
	quantity  int64
	updatedAt time.Time

	isConstructed bool
}

// NewLevel returns an empty level, used when a location first sees a product.
func NewLevel(location kernel.StockLocation, productID kernel.UUID) (*Level, error) {
	return RestoreLevel(location, productID, 0, time.Time{})
}

// RestoreLevel rebuilds a level from storage.
func RestoreLevel(
	location kernel.StockLocation,
	productID kernel.UUID,
	quantity int64,
	updatedAt time.Time,
) (*Level, error) {
	if err := errors.Join(
		location.Validate(),
		productID.Validate(),
	); err != nil {
		return nil, err
	}
	if quantity < 0 {
		return nil, errs.NewValueIsOutOfRangeError("quantity", quantity, 0, "unbounded")
	}

	return &Level{
		location:      location,
		productID:     productID,
		quantity:      quantity,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

func (l *Level) Validate() error {
	if l == nil || !l.isConstructed {
		return ErrLevelIsNotConstructed
	}
	return nil
}

func (l *Level) Location() kernel.StockLocation { return l.location }
func (l *Level) ProductID() kernel.UUID         { return l.productID }
func (l *Level) Quantity() int64                { return l.quantity }
func (l *Level) UpdatedAt() time.Time           { return l.updatedAt }

// Apply adds delta to the quantity. A result below zero is rejected with
// InsufficientStockError and leaves the level unchanged.
func (l *Level) Apply(delta int64, now time.Time) error {
	next := l.quantity + delta
	if next < 0 {
		return errs.NewInsufficientStockError(l.location.String(), l.productID.String(), l.quantity, -delta)
	}
	l.quantity = next
	l.updatedAt = now
	return nil
}
