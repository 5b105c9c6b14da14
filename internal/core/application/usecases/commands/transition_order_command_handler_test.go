package commands_test

import (
	"sync"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transitionFixture struct {
	store   *memStore
	clock   *testClock
	handler *commands.TransitionOrderCommandHandler
	agentID kernel.UUID
	product kernel.UUID
}

func newTransitionFixture(t *testing.T) *transitionFixture {
	t.Helper()
	store := newMemStore()
	clock := newTestClock()
	return &transitionFixture{
		store:   store,
		clock:   clock,
		handler: commands.NewTransitionOrderCommandHandler(store.orderFactory(), order.DefaultTransitionTable(), clock.Now, zerolog.Nop(), nil),
		agentID: kernel.NewUUID(),
		product: kernel.NewUUID(),
	}
}

func (f *transitionFixture) seedOrder(t *testing.T, status order.Status, lines ...order.Line) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(kernel.NewUUID(), "ORD-20261017-00001", f.agentID, kernel.NewUUID(), lines, status,
		f.clock.Now(), f.clock.Now())
	require.NoError(t, err)
	f.store.putOrder(o)
	return o
}

func (f *transitionFixture) transition(
	t *testing.T,
	orderID kernel.UUID,
	to order.Status,
	actor kernel.Actor,
	reason string,
) commands.Result {
	t.Helper()
	cmd, err := commands.NewTransitionOrderCommand(orderID, to, actor, reason, "")
	require.NoError(t, err)
	return f.handler.Handle(t.Context(), cmd)
}

func TestTransitionOrder_AcceptanceMovesStockToVan(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(kernel.Warehouse(), f.product, 10)
	o := f.seedOrder(t, order.ReadyForHandover, mustOrderLine(f.product, 4))

	res := f.transition(t, o.ID(), order.HandedToSalesRep, mustActorWithID(f.agentID, kernel.RoleSalesRep), "")

	require.True(t, res.Success, res.Message)
	van := mustVan(f.agentID)
	assert.Equal(t, int64(6), f.store.quantity(kernel.Warehouse(), f.product))
	assert.Equal(t, int64(4), f.store.quantity(van, f.product))
	assert.Equal(t, order.HandedToSalesRep, f.store.order(o.ID()).Status())

	movements := f.store.movements()
	require.Len(t, movements, 2)
	for _, m := range movements {
		assert.Equal(t, stock.ReasonOrderFulfillment, m.Reason())
		assert.Equal(t, o.ID().String(), m.CorrelationRef())
	}
	assert.Equal(t, int64(-4), movements[0].Delta())
	assert.True(t, movements[0].Location().IsWarehouse())
	assert.Equal(t, int64(4), movements[1].Delta())

	logs := f.store.actionLogs(o.ID())
	require.Len(t, logs, 1)
	assert.Equal(t, order.ReadyForHandover, logs[0].From())
	assert.Len(t, logs[0].Metadata()[order.MetaMovementIDs], 2)

	events := f.store.outboxMessages(outbox.TopicOrderStatusChanged)
	require.Len(t, events, 1)
	assert.Contains(t, string(events[0].Payload()), `"to":"handed_to_sales_rep"`)
}

func TestTransitionOrder_AcceptanceWithInsufficientStockChangesNothing(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(kernel.Warehouse(), f.product, 2)
	o := f.seedOrder(t, order.ReadyForHandover, mustOrderLine(f.product, 4))

	res := f.transition(t, o.ID(), order.HandedToSalesRep, mustActor(kernel.RoleAdmin), "")

	assert.False(t, res.Success)
	assert.Equal(t, commands.MsgInsufficientStock, res.Message)
	require.ErrorIs(t, res.Err(), errs.ErrInsufficientStock)

	assert.Equal(t, order.ReadyForHandover, f.store.order(o.ID()).Status())
	assert.Equal(t, int64(2), f.store.quantity(kernel.Warehouse(), f.product))
	assert.Equal(t, int64(0), f.store.quantity(mustVan(f.agentID), f.product))
	assert.Empty(t, f.store.movements())
	assert.Empty(t, f.store.actionLogs(o.ID()))
	assert.Empty(t, f.store.outboxMessages(outbox.TopicOrderStatusChanged))
}

func TestTransitionOrder_MultiLineAcceptanceIsAllOrNothing(t *testing.T) {
	f := newTransitionFixture(t)
	other := kernel.NewUUID()
	f.store.seed(kernel.Warehouse(), f.product, 10)
	f.store.seed(kernel.Warehouse(), other, 1)
	o := f.seedOrder(t, order.ReadyForHandover, mustOrderLine(f.product, 4), mustOrderLine(other, 2))

	res := f.transition(t, o.ID(), order.HandedToSalesRep, mustActor(kernel.RoleAdmin), "")

	require.ErrorIs(t, res.Err(), errs.ErrInsufficientStock)
	assert.Equal(t, int64(10), f.store.quantity(kernel.Warehouse(), f.product))
	assert.Equal(t, int64(1), f.store.quantity(kernel.Warehouse(), other))
	assert.Empty(t, f.store.movements())
}

func TestTransitionOrder_ConcurrentAcceptancesMoveStockOnce(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(kernel.Warehouse(), f.product, 10)
	o := f.seedOrder(t, order.ReadyForHandover, mustOrderLine(f.product, 4))

	cmd, err := commands.NewTransitionOrderCommand(o.ID(), order.HandedToSalesRep, mustActor(kernel.RoleAdmin), "", "")
	require.NoError(t, err)

	results := make([]commands.Result, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = f.handler.Handle(t.Context(), cmd)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
			continue
		}
		assert.Equal(t, commands.MsgOrderNotReady, res.Message)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(6), f.store.quantity(kernel.Warehouse(), f.product))
	assert.Len(t, f.store.movements(), 2)
}

func TestTransitionOrder_ReadyForHandoverRecordsShortfall(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(kernel.Warehouse(), f.product, 1)
	o := f.seedOrder(t, order.Pending, mustOrderLine(f.product, 3))

	res := f.transition(t, o.ID(), order.ReadyForHandover, mustActor(kernel.RoleWarehouse), "")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, order.ReadyForHandover, f.store.order(o.ID()).Status())
	assert.Empty(t, f.store.movements(), "readiness must not reserve stock")

	logs := f.store.actionLogs(o.ID())
	require.Len(t, logs, 1)
	snapshot, ok := logs[0].Metadata()[order.MetaAvailability].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, snapshot["sufficient"])
}

func TestTransitionOrder_RejectsIllegalMoves(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		to      order.Status
		role    kernel.Role
		reason  string
		message string
	}{
		{"absent pair", order.Pending, order.Completed, kernel.RoleAdmin, "", commands.MsgTransitionRejected},
		{"handover before ready", order.Pending, order.HandedToSalesRep, kernel.RoleAdmin, "", commands.MsgOrderNotReady},
		{"role not allowed", order.ReadyForHandover, order.HandedToSalesRep, kernel.RoleCustomer, "",
			commands.MsgTransitionRejected},
		{"reason missing", order.Pending, order.OnHold, kernel.RoleWarehouse, " ", commands.MsgTransitionRejected},
		{"terminal status", order.Completed, order.Cancelled, kernel.RoleAdmin, "late", commands.MsgTransitionRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTransitionFixture(t)
			f.store.seed(kernel.Warehouse(), f.product, 10)
			o := f.seedOrder(t, tt.from, mustOrderLine(f.product, 1))

			res := f.transition(t, o.ID(), tt.to, mustActor(tt.role), tt.reason)

			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Message)
			require.ErrorIs(t, res.Err(), errs.ErrInvalidTransition)
			assert.Equal(t, tt.from, f.store.order(o.ID()).Status())
			assert.Empty(t, f.store.actionLogs(o.ID()))
		})
	}
}

func TestTransitionOrder_UnknownOrder(t *testing.T) {
	f := newTransitionFixture(t)

	res := f.transition(t, kernel.NewUUID(), order.OnHold, mustActor(kernel.RoleAdmin), "customer asked")

	assert.Equal(t, commands.MsgNotFound, res.Message)
	require.ErrorIs(t, res.Err(), errs.ErrObjectNotFound)
}

func TestTransitionOrder_CancelAfterHandoverReversesStock(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(kernel.Warehouse(), f.product, 10)
	o := f.seedOrder(t, order.ReadyForHandover, mustOrderLine(f.product, 4))

	require.True(t, f.transition(t, o.ID(), order.HandedToSalesRep, mustActor(kernel.RoleAdmin), "").Success)
	res := f.transition(t, o.ID(), order.Cancelled, mustActor(kernel.RoleAdmin), "customer refused")

	require.True(t, res.Success, res.Message)
	assert.Equal(t, order.Cancelled, f.store.order(o.ID()).Status())
	assert.Equal(t, int64(10), f.store.quantity(kernel.Warehouse(), f.product))
	assert.Equal(t, int64(0), f.store.quantity(mustVan(f.agentID), f.product))

	movements := f.store.movements()
	require.Len(t, movements, 4)
	assert.Equal(t, stock.ReasonOrderCancellation, movements[3].Reason())
	assert.Len(t, f.store.actionLogs(o.ID()), 2)
}

func TestTransitionOrder_CancelAfterInvoiceIsRejected(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(mustVan(f.agentID), f.product, 4)
	o := f.seedOrder(t, order.HandedToSalesRep, mustOrderLine(f.product, 4))
	f.store.markInvoiced(o.ID())

	res := f.transition(t, o.ID(), order.Cancelled, mustActor(kernel.RoleAdmin), "wrong customer")

	assert.False(t, res.Success)
	assert.Equal(t, commands.MsgOrderInvoiced, res.Message)
	assert.Equal(t, order.HandedToSalesRep, f.store.order(o.ID()).Status())
	assert.Equal(t, int64(4), f.store.quantity(mustVan(f.agentID), f.product))
	assert.Empty(t, f.store.movements())
}

func TestTransitionOrder_CancelAfterHandoverFailsWhenVanIsShort(t *testing.T) {
	f := newTransitionFixture(t)
	f.store.seed(mustVan(f.agentID), f.product, 1)
	o := f.seedOrder(t, order.HandedToSalesRep, mustOrderLine(f.product, 4))

	res := f.transition(t, o.ID(), order.Cancelled, mustActor(kernel.RoleAdmin), "customer refused")

	require.ErrorIs(t, res.Err(), errs.ErrInsufficientStock)
	assert.Equal(t, order.HandedToSalesRep, f.store.order(o.ID()).Status())
}
