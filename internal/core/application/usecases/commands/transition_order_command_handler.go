package commands

import (
	"context"
	"slices"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// TransitionOrderCommandHandler drives orders through the transition table.
//
// Side effects by transition:
//   - any -> ready_for_handover: availability snapshot in the log, no reservation
//   - ready_for_handover -> handed_to_sales_rep: every line moves from the
//     warehouse to the agent's van; the status is written only after all
//     transfers succeeded, in the same transaction
//   - handed_to_sales_rep -> cancelled: refused while an invoice exists,
//     otherwise every line moves back from the van to the warehouse
//
// The order row is locked for the whole transaction, so two acceptances of the
// same order serialize and the second one finds it already handed over.
type TransitionOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	table      order.TransitionTable
	now        func() time.Time
	log        zerolog.Logger
	metrics    *metrics.Recorder
}

func NewTransitionOrderCommandHandler(
	uowFactory OrderUoWFactory,
	table order.TransitionTable,
	now func() time.Time,
	log zerolog.Logger,
	recorder *metrics.Recorder,
) *TransitionOrderCommandHandler {
	return &TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		table:      table,
		now:        now,
		log:        log.With().Str("handler", "transition_order").Logger(),
		metrics:    recorder,
	}
}

func (h *TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) Result {
	err := h.handle(ctx, cmd)
	h.metrics.Transition(cmd.To().String(), err)
	if err != nil {
		return resultFromError(h.log.With().Str("order_id", cmd.OrderID().String()).Logger(), err)
	}

	h.log.Info().
		Str("order_id", cmd.OrderID().String()).
		Str("to", cmd.To().String()).
		Str("actor_role", cmd.Actor().Role().String()).
		Msg("order transitioned")
	return succeeded("order moved to " + cmd.To().String())
}

func (h *TransitionOrderCommandHandler) handle(ctx context.Context, cmd TransitionOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	actor := cmd.Actor()
	from := o.Status()
	if err = o.CanTransition(h.table, cmd.To(), actor.Role(), cmd.Reason()); err != nil {
		return err
	}

	metadata := map[string]any{}
	var (
		movementIDs []string
		moveReason  stock.Reason
	)

	switch {
	case cmd.To() == order.ReadyForHandover:
		snapshot, checkErr := services.NewAvailabilityChecker(uow.StockRepository(), h.now).
			Check(ctx, kernel.Warehouse(), o.Lines())
		if checkErr != nil {
			return checkErr
		}
		metadata[order.MetaAvailability] = snapshot.AsMetadata()

	case from == order.ReadyForHandover && cmd.To() == order.HandedToSalesRep:
		if movementIDs, err = h.moveLines(ctx, uow, o, actor, true); err != nil {
			return err
		}
		moveReason = stock.ReasonOrderFulfillment

	case from == order.HandedToSalesRep && cmd.To() == order.Cancelled:
		invoiced, lookupErr := uow.InvoiceLookup().ExistsForOrder(ctx, o.ID())
		if lookupErr != nil {
			return lookupErr
		}
		if invoiced {
			return errs.NewInvalidTransitionErrorWithDetail(order.EntityName, from.String(), cmd.To().String(),
				detailInvoiced)
		}
		if movementIDs, err = h.moveLines(ctx, uow, o, actor, false); err != nil {
			return err
		}
		moveReason = stock.ReasonOrderCancellation
	}

	if len(movementIDs) > 0 {
		metadata[order.MetaMovementIDs] = movementIDs
	}

	now := h.now()
	if _, err = o.Transition(h.table, cmd.To(), actor.Role(), cmd.Reason(), now); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	entry, err := order.NewActionLog(o.ID(), from, o.Status(), actor, cmd.Reason(), cmd.Notes(), metadata, now)
	if err != nil {
		return err
	}
	if err = orderRepo.AppendActionLog(ctx, entry); err != nil {
		return err
	}

	if err = publishOrderStatus(ctx, uow, o, from, actor, movementIDs, now); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.metrics.Movements(moveReason.String(), len(movementIDs))
	return nil
}

// moveLines transfers every order line between the warehouse and the agent's
// van: towards the van on handover, back to the warehouse on cancellation.
// Lines are processed in product order so concurrent acceptances lock stock
// rows in the same sequence.
func (h *TransitionOrderCommandHandler) moveLines(
	ctx context.Context,
	uow OrderUoW,
	o *order.Order,
	actor kernel.Actor,
	toVan bool,
) ([]string, error) {
	van, err := o.Van()
	if err != nil {
		return nil, err
	}

	from, to, reason := kernel.Warehouse(), van, stock.ReasonOrderFulfillment
	if !toVan {
		from, to, reason = van, kernel.Warehouse(), stock.ReasonOrderCancellation
	}

	lines := o.Lines()
	slices.SortFunc(lines, func(a, b order.Line) int {
		return strings.Compare(a.ProductID().String(), b.ProductID().String())
	})

	ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), actor.ID(), h.now)
	ids := make([]string, 0, 2*len(lines))
	for _, line := range lines {
		res, err := ledger.Transfer(ctx, from, to, line.ProductID(), line.Quantity(), reason, o.ID().String())
		if err != nil {
			return nil, err
		}
		ids = append(ids, res.Out.ID().String(), res.In.ID().String())
	}

	return ids, nil
}
