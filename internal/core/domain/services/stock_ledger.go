package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// TransferResult holds the two movements written by StockLedger.Transfer.
type TransferResult struct {
	Out *stock.Movement
	In  *stock.Movement
}

// StockLedger is the sole mutator of stock quantities.
//
// Business rules:
//   - every mutation runs inside the caller's open transaction
//   - the affected row is locked and re-read immediately before it changes,
//     a previous unlocked read is never trusted
//   - a quantity never goes below zero; the violating call fails with
//     InsufficientStockError and changes nothing
//   - every mutation appends exactly one movement carrying the signed delta
//
// Example:
//
//	ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), actor.ID(), time.Now)
//	res, err := ledger.Transfer(ctx, kernel.Warehouse(), van, productID, 4, stock.ReasonOrderFulfillment, orderID.String())
type StockLedger struct {
	tx        ports.TxState
	levels    ports.StockRepository
	movements ports.MovementRepository
	actorID   kernel.UUID
	now       func() time.Time
}

// NewStockLedger binds a ledger to a unit of work. actorID is stamped on every
// movement; now supplies movement timestamps.
func NewStockLedger(
	tx ports.TxState,
	levels ports.StockRepository,
	movements ports.MovementRepository,
	actorID kernel.UUID,
	now func() time.Time,
) *StockLedger {
	return &StockLedger{
		tx:        tx,
		levels:    levels,
		movements: movements,
		actorID:   actorID,
		now:       now,
	}
}

// GetQuantity returns the on-hand quantity. With forUpdate the row is locked
// for the rest of the transaction, which must be open.
func (l *StockLedger) GetQuantity(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
	forUpdate bool,
) (int64, error) {
	if !forUpdate {
		level, err := l.levels.Get(ctx, location, productID)
		if err != nil {
			return 0, err
		}
		return level.Quantity(), nil
	}

	if err := l.requireTx("stock lock"); err != nil {
		return 0, err
	}
	level, err := l.levels.GetForUpdate(ctx, location, productID)
	if err != nil {
		return 0, err
	}
	return level.Quantity(), nil
}

// Deduct removes qty units. qty must be positive.
func (l *StockLedger) Deduct(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
	qty int64,
	reason stock.Reason,
	correlationRef string,
) (*stock.Movement, error) {
	if err := l.requireTx("stock deduct"); err != nil {
		return nil, err
	}
	if err := positive(qty); err != nil {
		return nil, err
	}
	return l.apply(ctx, location, productID, -qty, reason, correlationRef)
}

// Add puts qty units. qty must be positive.
func (l *StockLedger) Add(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
	qty int64,
	reason stock.Reason,
	correlationRef string,
) (*stock.Movement, error) {
	if err := l.requireTx("stock add"); err != nil {
		return nil, err
	}
	if err := positive(qty); err != nil {
		return nil, err
	}
	return l.apply(ctx, location, productID, qty, reason, correlationRef)
}

// Transfer moves qty units of a product between two different locations.
// Both rows are locked in a fixed order before either changes, so opposite
// transfers of the same product cannot deadlock. On error the caller must roll
// back; nothing is visible until commit.
func (l *StockLedger) Transfer(
	ctx context.Context,
	from, to kernel.StockLocation,
	productID kernel.UUID,
	qty int64,
	reason stock.Reason,
	correlationRef string,
) (TransferResult, error) {
	if err := l.requireTx("stock transfer"); err != nil {
		return TransferResult{}, err
	}
	if err := positive(qty); err != nil {
		return TransferResult{}, err
	}
	if from.IsEqual(to) {
		return TransferResult{}, errs.NewValueIsInvalidErrorWithCause("to",
			fmt.Errorf("source and destination are both %s", from))
	}

	first, second := from, to
	if strings.Compare(first.String(), second.String()) > 0 {
		first, second = second, first
	}
	for _, loc := range []kernel.StockLocation{first, second} {
		if _, err := l.levels.GetForUpdate(ctx, loc, productID); err != nil {
			return TransferResult{}, err
		}
	}

	out, err := l.apply(ctx, from, productID, -qty, reason, correlationRef)
	if err != nil {
		return TransferResult{}, err
	}
	in, err := l.apply(ctx, to, productID, qty, reason, correlationRef)
	if err != nil {
		return TransferResult{}, err
	}

	return TransferResult{Out: out, In: in}, nil
}

// Adjust applies a signed delta, dispatching to Add or Deduct.
func (l *StockLedger) Adjust(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
	delta int64,
	reason stock.Reason,
	correlationRef string,
) (*stock.Movement, error) {
	if delta < 0 {
		return l.Deduct(ctx, location, productID, -delta, reason, correlationRef)
	}
	return l.Add(ctx, location, productID, delta, reason, correlationRef)
}

func (l *StockLedger) apply(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
	delta int64,
	reason stock.Reason,
	correlationRef string,
) (*stock.Movement, error) {
	now := l.now()

	movement, err := stock.NewMovement(location, productID, delta, reason, correlationRef, l.actorID, now)
	if err != nil {
		return nil, err
	}

	level, err := l.levels.GetForUpdate(ctx, location, productID)
	if err != nil {
		return nil, err
	}
	if err = level.Apply(delta, now); err != nil {
		return nil, err
	}

	if err = l.levels.Save(ctx, level); err != nil {
		return nil, err
	}
	if err = l.movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	return movement, nil
}

func (l *StockLedger) requireTx(operation string) error {
	if l.tx == nil || !l.tx.InTransaction() {
		return errs.NewPreconditionError(operation, "an open transaction")
	}
	return nil
}

func positive(qty int64) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", qty))
	}
	return nil
}
