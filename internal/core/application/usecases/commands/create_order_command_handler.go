package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/metrics"

	"github.com/rs/zerolog"
)

// CreateOrderResult carries the identity of a created order.
type CreateOrderResult struct {
	Result

	OrderID kernel.UUID
	Number  string
}

// CreateOrderCommandHandler persists new orders in pending status.
//
// The order number is minted from the order_number counter inside the same
// transaction, so a rolled back creation leaves no gap. Creation runs a
// non-binding availability check against the warehouse and keeps the snapshot
// in the creation log entry; no stock moves.
type CreateOrderCommandHandler struct {
	uowFactory   OrderUoWFactory
	numberPrefix string
	now          func() time.Time
	log          zerolog.Logger
	metrics      *metrics.Recorder
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	numberPrefix string,
	now func() time.Time,
	log zerolog.Logger,
	recorder *metrics.Recorder,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		uowFactory:   uowFactory,
		numberPrefix: numberPrefix,
		now:          now,
		log:          log.With().Str("handler", "create_order").Logger(),
		metrics:      recorder,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) CreateOrderResult {
	o, err := h.handle(ctx, cmd)
	h.metrics.Transition(string(order.Pending), err)
	if err != nil {
		return CreateOrderResult{Result: resultFromError(h.log, err)}
	}

	h.log.Info().Str("order_id", o.ID().String()).Str("number", o.Number()).Msg("order created")
	return CreateOrderResult{
		Result:  succeeded("order created"),
		OrderID: o.ID(),
		Number:  o.Number(),
	}
}

func (h *CreateOrderCommandHandler) handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.now()

	seq, err := services.NewSequenceCounter(uow, uow.CounterRepository()).Next(ctx, services.OrderNumberCounter)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(
		kernel.NewUUID(),
		services.FormatOrderNumber(h.numberPrefix, now, seq),
		cmd.AgentID(),
		cmd.CustomerID(),
		cmd.Lines(),
		now,
	)
	if err != nil {
		return nil, err
	}

	snapshot, err := services.NewAvailabilityChecker(uow.StockRepository(), h.now).
		Check(ctx, kernel.Warehouse(), o.Lines())
	if err != nil {
		return nil, err
	}

	orderRepo := uow.OrderRepository()
	if err = orderRepo.Add(ctx, o); err != nil {
		return nil, err
	}

	entry, err := order.NewActionLog(o.ID(), "", order.Pending, cmd.Actor(), "", "order created",
		map[string]any{order.MetaAvailability: snapshot.AsMetadata()}, now)
	if err != nil {
		return nil, err
	}
	if err = orderRepo.AppendActionLog(ctx, entry); err != nil {
		return nil, err
	}

	if err = publishOrderStatus(ctx, uow, o, "", cmd.Actor(), nil, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// publishOrderStatus writes an OrderStatusChanged event to the outbox of the
// current transaction.
func publishOrderStatus(
	ctx context.Context,
	uow OutboxRepoFactory,
	o *order.Order,
	from order.Status,
	actor kernel.Actor,
	movementIDs []string,
	now time.Time,
) error {
	msg, err := outbox.NewMessage(outbox.TopicOrderStatusChanged, o.ID().String(), outbox.OrderStatusChanged{
		OrderID:     o.ID().String(),
		OrderNumber: o.Number(),
		From:        from.String(),
		To:          o.Status().String(),
		ActorID:     actor.ID().String(),
		ActorRole:   actor.Role().String(),
		MovementIDs: movementIDs,
		OccurredAt:  now,
	}, now)
	if err != nil {
		return err
	}
	return uow.OutboxRepository().Add(ctx, msg)
}
