package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

// QueriesIntegrationTestSuite seeds PostgreSQL through the unit of work and
// the stock ledger, then reads it back through the query handlers.
type QueriesIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory ports.UnitOfWorkFactory
	now     time.Time
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background(), postgres_adapter.Migrate)
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB)
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate(
		"stock_levels", "stock_movements", "orders", "order_lines", "order_action_logs", "transfer_requests",
	))
	suite.now = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

// inTx runs fn inside a committed unit of work with a ledger acting as actorID.
func (suite *QueriesIntegrationTestSuite) inTx(fn func(uow ports.UnitOfWork, ledger *services.StockLedger)) {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), kernel.NewUUID(),
		func() time.Time { return suite.now })
	fn(uow, ledger)

	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *QueriesIntegrationTestSuite) van(agentID kernel.UUID) kernel.StockLocation {
	van, err := kernel.Van(agentID)
	suite.Require().NoError(err)
	return van
}

func (suite *QueriesIntegrationTestSuite) TestGetStockLevels_FiltersByLocationAndVisibility() {
	ctx := context.Background()
	agentID := kernel.NewUUID()
	van := suite.van(agentID)
	soap, rice, empty := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()

	suite.inTx(func(_ ports.UnitOfWork, ledger *services.StockLedger) {
		_, err := ledger.Add(ctx, kernel.Warehouse(), soap, 10, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
		_, err = ledger.Add(ctx, kernel.Warehouse(), rice, 5, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
		_, err = ledger.Transfer(ctx, kernel.Warehouse(), van, soap, 4, stock.ReasonLoad, "T-1")
		suite.Require().NoError(err)
		_, err = ledger.Add(ctx, kernel.Warehouse(), empty, 1, stock.ReasonTransferIn, "DN-2")
		suite.Require().NoError(err)
		_, err = ledger.Deduct(ctx, kernel.Warehouse(), empty, 1, stock.ReasonTransferOut, "broken")
		suite.Require().NoError(err)
	})

	all, err := queries.NewGetStockLevelsQuery(nil)
	suite.Require().NoError(err)
	levels, err := queries.NewGetStockLevelsQueryHandler(suite.pg.DB, nil).Handle(ctx, all)
	suite.Require().NoError(err)
	suite.Len(levels, 4)

	onlyVan, err := queries.NewGetStockLevelsQuery(&van)
	suite.Require().NoError(err)
	levels, err = queries.NewGetStockLevelsQueryHandler(suite.pg.DB, nil).Handle(ctx, onlyVan)
	suite.Require().NoError(err)
	suite.Require().Len(levels, 1)
	suite.True(levels[0].Location.IsEqual(van))
	suite.Equal(soap, levels[0].ProductID)
	suite.Equal(int64(4), levels[0].Quantity)

	visibility := queries.StaticVisibility{HideZeroQuantities: true, ProductIDs: []kernel.UUID{rice, empty}}
	levels, err = queries.NewGetStockLevelsQueryHandler(suite.pg.DB, visibility).Handle(ctx, all)
	suite.Require().NoError(err)
	suite.Require().Len(levels, 1)
	suite.Equal(rice, levels[0].ProductID)
	suite.True(levels[0].Location.IsWarehouse())
}

func (suite *QueriesIntegrationTestSuite) TestGetStockMovements_Filters() {
	ctx := context.Background()
	agentID := kernel.NewUUID()
	van := suite.van(agentID)
	productID := kernel.NewUUID()

	suite.inTx(func(_ ports.UnitOfWork, ledger *services.StockLedger) {
		_, err := ledger.Add(ctx, kernel.Warehouse(), productID, 10, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
		_, err = ledger.Transfer(ctx, kernel.Warehouse(), van, productID, 3, stock.ReasonLoad, "T-1")
		suite.Require().NoError(err)
	})

	byRef, err := queries.NewGetStockMovementsQuery(queries.MovementFilter{CorrelationRef: "T-1"})
	suite.Require().NoError(err)
	movements, err := queries.NewGetStockMovementsQueryHandler(suite.pg.DB).Handle(ctx, byRef)
	suite.Require().NoError(err)
	suite.Len(movements, 2)
	var net int64
	for _, m := range movements {
		suite.Equal(stock.ReasonLoad, m.Reason)
		net += m.Delta
	}
	suite.Zero(net)

	byVan, err := queries.NewGetStockMovementsQuery(queries.MovementFilter{Location: &van, ProductID: productID})
	suite.Require().NoError(err)
	movements, err = queries.NewGetStockMovementsQueryHandler(suite.pg.DB).Handle(ctx, byVan)
	suite.Require().NoError(err)
	suite.Require().Len(movements, 1)
	suite.Equal(int64(3), movements[0].Delta)
	suite.False(movements[0].ActorID.IsZero())

	limited, err := queries.NewGetStockMovementsQuery(queries.MovementFilter{Limit: 1})
	suite.Require().NoError(err)
	movements, err = queries.NewGetStockMovementsQueryHandler(suite.pg.DB).Handle(ctx, limited)
	suite.Require().NoError(err)
	suite.Len(movements, 1)
}

func (suite *QueriesIntegrationTestSuite) TestGetReconciliation_ConsistentLedger() {
	ctx := context.Background()
	productID := kernel.NewUUID()
	van := suite.van(kernel.NewUUID())

	suite.inTx(func(_ ports.UnitOfWork, ledger *services.StockLedger) {
		_, err := ledger.Add(ctx, kernel.Warehouse(), productID, 10, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
		_, err = ledger.Transfer(ctx, kernel.Warehouse(), van, productID, 4, stock.ReasonOrderFulfillment, "ord-1")
		suite.Require().NoError(err)
		_, err = ledger.Transfer(ctx, van, kernel.Warehouse(), productID, 4, stock.ReasonOrderCancellation, "ord-1")
		suite.Require().NoError(err)
	})

	report, err := queries.NewGetReconciliationQueryHandler(suite.pg.DB).Handle(ctx, queries.NewGetReconciliationQuery())

	suite.Require().NoError(err)
	suite.Equal(2, report.Checked)
	suite.True(report.Consistent())
}

func (suite *QueriesIntegrationTestSuite) TestGetReconciliation_ReportsDrift() {
	ctx := context.Background()
	tampered, orphan := kernel.NewUUID(), kernel.NewUUID()

	suite.inTx(func(_ ports.UnitOfWork, ledger *services.StockLedger) {
		_, err := ledger.Add(ctx, kernel.Warehouse(), tampered, 10, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
		_, err = ledger.Add(ctx, kernel.Warehouse(), orphan, 2, stock.ReasonTransferIn, "DN-1")
		suite.Require().NoError(err)
	})
	suite.Require().NoError(suite.pg.DB.Exec(
		"UPDATE stock_levels SET quantity = 7 WHERE product_id = ?", tampered.Bytes()).Error)
	suite.Require().NoError(suite.pg.DB.Exec(
		"DELETE FROM stock_levels WHERE product_id = ?", orphan.Bytes()).Error)

	report, err := queries.NewGetReconciliationQueryHandler(suite.pg.DB).Handle(ctx, queries.NewGetReconciliationQuery())

	suite.Require().NoError(err)
	suite.Equal(2, report.Checked)
	suite.Require().Len(report.Mismatches, 2)
	byProduct := map[kernel.UUID]queries.Mismatch{}
	for _, m := range report.Mismatches {
		byProduct[m.ProductID] = m
	}
	suite.Equal(int64(7), byProduct[tampered].Quantity)
	suite.Equal(int64(10), byProduct[tampered].MovementSum)
	suite.Equal(int64(0), byProduct[orphan].Quantity)
	suite.Equal(int64(2), byProduct[orphan].MovementSum)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrderHistory() {
	ctx := context.Background()
	productID := kernel.NewUUID()
	line, err := order.NewLine(productID, 2)
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), "ORD-20261017-00001", kernel.NewUUID(), kernel.NewUUID(),
		[]order.Line{line}, suite.now)
	suite.Require().NoError(err)
	keeper, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleWarehouse)
	suite.Require().NoError(err)

	suite.inTx(func(uow ports.UnitOfWork, _ *services.StockLedger) {
		suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
		from, transitionErr := o.Transition(order.DefaultTransitionTable(), order.OnHold, keeper.Role(), "supplier late",
			suite.now.Add(time.Minute))
		suite.Require().NoError(transitionErr)
		suite.Require().NoError(uow.OrderRepository().Update(ctx, o))
		entry, logErr := order.NewActionLog(o.ID(), from, order.OnHold, keeper, "supplier late", "call Friday",
			map[string]any{"ticket": "T-9"}, suite.now.Add(time.Minute))
		suite.Require().NoError(logErr)
		suite.Require().NoError(uow.OrderRepository().AppendActionLog(ctx, entry))
	})

	query, err := queries.NewGetOrderHistoryQuery(o.ID())
	suite.Require().NoError(err)
	view, err := queries.NewGetOrderHistoryQueryHandler(suite.pg.DB).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Equal("ORD-20261017-00001", view.Number)
	suite.Equal(order.OnHold, view.Status)
	suite.Require().Len(view.Lines, 1)
	suite.Equal(productID, view.Lines[0].ProductID)
	suite.Require().Len(view.Entries, 1)
	suite.Equal(order.Pending, view.Entries[0].From)
	suite.Equal(keeper.ID(), view.Entries[0].ActorID)
	suite.Equal(kernel.RoleWarehouse, view.Entries[0].ActorRole)
	suite.Equal("call Friday", view.Entries[0].Notes)
	suite.Equal("T-9", view.Entries[0].Metadata["ticket"])
}

func (suite *QueriesIntegrationTestSuite) TestGetOrderHistory_UnknownOrder() {
	query, err := queries.NewGetOrderHistoryQuery(kernel.NewUUID())
	suite.Require().NoError(err)

	_, err = queries.NewGetOrderHistoryQueryHandler(suite.pg.DB).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestGetPendingTransfers() {
	ctx := context.Background()
	agentID, otherAgent := kernel.NewUUID(), kernel.NewUUID()

	open := suite.newAdjustment(agentID, time.Hour, nil)
	lapsed := suite.newAdjustment(agentID, time.Minute, nil)
	awaitingRetry := suite.newAdjustment(agentID, time.Minute, func(r *transfer.Request, codes transfer.Codes) {
		_, err := r.Confirm(transfer.Initiator, codes.Initiator, suite.now)
		suite.Require().NoError(err)
		_, err = r.Confirm(transfer.Counterparty, codes.Counterparty, suite.now)
		suite.Require().NoError(err)
	})
	cancelled := suite.newAdjustment(agentID, time.Hour, func(r *transfer.Request, _ transfer.Codes) {
		suite.Require().NoError(r.Cancel(suite.now))
	})
	foreign := suite.newAdjustment(otherAgent, time.Hour, nil)

	suite.inTx(func(uow ports.UnitOfWork, _ *services.StockLedger) {
		for _, r := range []*transfer.Request{open, lapsed, awaitingRetry, cancelled, foreign} {
			suite.Require().NoError(uow.TransferRepository().Add(ctx, r))
		}
	})

	later := func() time.Time { return suite.now.Add(10 * time.Minute) }
	handler := queries.NewGetPendingTransfersQueryHandler(suite.pg.DB, later)

	pending, err := handler.Handle(ctx, queries.NewGetPendingTransfersQuery(agentID))
	suite.Require().NoError(err)
	ids := make([]kernel.UUID, 0, len(pending))
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	suite.ElementsMatch([]kernel.UUID{open.ID(), awaitingRetry.ID()}, ids)
	for _, p := range pending {
		suite.Equal(transfer.KindAdjustment, p.Kind)
		suite.Len(p.Lines, 1)
		if p.ID == awaitingRetry.ID() {
			suite.True(p.InitiatorConfirmed)
			suite.True(p.CounterpartyConfirmed)
		}
	}

	pending, err = handler.Handle(ctx, queries.NewGetPendingTransfersQuery(kernel.UUID{}))
	suite.Require().NoError(err)
	suite.Len(pending, 3)
}

func (suite *QueriesIntegrationTestSuite) newAdjustment(
	agentID kernel.UUID,
	ttl time.Duration,
	mutate func(*transfer.Request, transfer.Codes),
) *transfer.Request {
	line, err := transfer.NewLine(kernel.NewUUID(), -2)
	suite.Require().NoError(err)
	req, codes, err := transfer.NewRequest(transfer.KindAdjustment, agentID, agentID, kernel.NewUUID(),
		[]transfer.Line{line}, "recount", suite.now, ttl)
	suite.Require().NoError(err)
	if mutate != nil {
		mutate(req, codes)
	}
	return req
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
