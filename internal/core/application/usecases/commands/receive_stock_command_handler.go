package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// ReceiveStockResult carries the movement written for the receipt or write-off.
type ReceiveStockResult struct {
	Result

	MovementID kernel.UUID
}

// ReceiveStockCommandHandler applies warehouse receipts and write-offs through
// the ledger. Only admin and warehouse roles may book them.
type ReceiveStockCommandHandler struct {
	uowFactory LedgerUoWFactory
	now        func() time.Time
	log        zerolog.Logger
	metrics    *metrics.Recorder
}

func NewReceiveStockCommandHandler(
	uowFactory LedgerUoWFactory,
	now func() time.Time,
	log zerolog.Logger,
	recorder *metrics.Recorder,
) *ReceiveStockCommandHandler {
	return &ReceiveStockCommandHandler{
		uowFactory: uowFactory,
		now:        now,
		log:        log.With().Str("handler", "receive_stock").Logger(),
		metrics:    recorder,
	}
}

func (h *ReceiveStockCommandHandler) Handle(ctx context.Context, cmd ReceiveStockCommand) ReceiveStockResult {
	movement, err := h.handle(ctx, cmd)
	if err != nil {
		return ReceiveStockResult{Result: resultFromError(h.log, err)}
	}

	h.metrics.Movement(movement.Reason().String())
	h.log.Info().
		Str("product_id", movement.ProductID().String()).
		Int64("delta", movement.Delta()).
		Str("reason", movement.Reason().String()).
		Msg("warehouse stock booked")
	return ReceiveStockResult{Result: succeeded("stock booked"), MovementID: movement.ID()}
}

func (h *ReceiveStockCommandHandler) handle(ctx context.Context, cmd ReceiveStockCommand) (*stock.Movement, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if role := cmd.Actor().Role(); role != kernel.RoleAdmin && role != kernel.RoleWarehouse {
		return nil, errs.NewForbiddenError(role.String(), "book warehouse stock")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), cmd.Actor().ID(), h.now)

	var (
		movement *stock.Movement
		err      error
	)
	if cmd.IsWriteOff() {
		movement, err = ledger.Deduct(ctx, kernel.Warehouse(), cmd.ProductID(), cmd.Quantity(),
			cmd.Reason(), cmd.Reference())
	} else {
		movement, err = ledger.Add(ctx, kernel.Warehouse(), cmd.ProductID(), cmd.Quantity(),
			cmd.Reason(), cmd.Reference())
	}
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return movement, nil
}
