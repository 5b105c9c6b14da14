package stock

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var ErrMovementIsNotConstructed = errors.New("Movement must be created via NewMovement or RestoreMovement")

// Movement is one signed quantity delta applied to one location and product.
// Movements are immutable once written.
type Movement struct {
	id             kernel.UUID
	location       kernel.StockLocation
	productID      kernel.UUID
	delta          int64
	reason         Reason
	correlationRef string
	actorID        kernel.UUID
	createdAt      time.Time

	isConstructed bool
}

// NewMovement records a new delta. correlationRef is the order or transfer
// request the movement belongs to and may be empty; actorID may be the zero
// UUID for movements without a human actor.
func NewMovement(
	location kernel.StockLocation,
	productID kernel.UUID,
	delta int64,
	reason Reason,
	correlationRef string,
	actorID kernel.UUID,
	createdAt time.Time,
) (*Movement, error) {
	return RestoreMovement(kernel.NewUUID(), location, productID, delta, reason, correlationRef, actorID, createdAt)
}

func RestoreMovement(
	id kernel.UUID,
	location kernel.StockLocation,
	productID kernel.UUID,
	delta int64,
	reason Reason,
	correlationRef string,
	actorID kernel.UUID,
	createdAt time.Time,
) (*Movement, error) {
	var deltaErr error
	if delta == 0 {
		deltaErr = errs.NewValueIsInvalidError("delta must not be zero")
	}
	if err := errors.Join(
		id.Validate(),
		location.Validate(),
		productID.Validate(),
		reason.Validate(),
		deltaErr,
	); err != nil {
		return nil, err
	}

	return &Movement{
		id:             id,
		location:       location,
		productID:      productID,
		delta:          delta,
		reason:         reason,
		correlationRef: correlationRef,
		actorID:        actorID,
		createdAt:      createdAt,
		isConstructed:  true,
	}, nil
}

func (m *Movement) Validate() error {
	if m == nil || !m.isConstructed {
		return ErrMovementIsNotConstructed
	}
	return nil
}

func (m *Movement) ID() kernel.UUID                { return m.id }
func (m *Movement) Location() kernel.StockLocation { return m.location }
func (m *Movement) ProductID() kernel.UUID         { return m.productID }
func (m *Movement) Delta() int64                   { return m.delta }
func (m *Movement) Reason() Reason                 { return m.reason }
func (m *Movement) CorrelationRef() string         { return m.correlationRef }
func (m *Movement) ActorID() kernel.UUID           { return m.actorID }
func (m *Movement) CreatedAt() time.Time           { return m.createdAt }
