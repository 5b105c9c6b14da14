// Package http exposes the command and query handlers over a thin echo API.
// Callers are identified by the X-Actor-ID and X-Actor-Role headers set by the
// upstream auth layer; authorization decisions stay in the use cases.
package http

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
)

// Use case ports of the server, satisfied by the command and query handlers.
type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) commands.CreateOrderResult
	}

	OrderTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionOrderCommand) commands.Result
	}

	TransferService interface {
		Create(ctx context.Context, cmd commands.CreateTransferCommand) commands.CreateTransferResult
		Confirm(ctx context.Context, cmd commands.ConfirmTransferCommand) commands.ConfirmTransferResult
		Complete(ctx context.Context, cmd commands.CompleteTransferCommand) commands.Result
		Cancel(ctx context.Context, cmd commands.CancelTransferCommand) commands.Result
	}

	StockReceiver interface {
		Handle(ctx context.Context, cmd commands.ReceiveStockCommand) commands.ReceiveStockResult
	}

	SettingUpdater interface {
		Handle(ctx context.Context, cmd commands.UpdateSettingCommand) commands.Result
	}

	StockLevelsReader interface {
		Handle(ctx context.Context, query queries.GetStockLevelsQuery) ([]queries.StockLevelView, error)
	}

	MovementsReader interface {
		Handle(ctx context.Context, query queries.GetStockMovementsQuery) ([]queries.MovementView, error)
	}

	ReconciliationReader interface {
		Handle(ctx context.Context, query queries.GetReconciliationQuery) (queries.ReconciliationReport, error)
	}

	OrderHistoryReader interface {
		Handle(ctx context.Context, query queries.GetOrderHistoryQuery) (queries.OrderHistoryView, error)
	}

	PendingTransfersReader interface {
		Handle(ctx context.Context, query queries.GetPendingTransfersQuery) ([]queries.PendingTransferView, error)
	}
)

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	CreateOrder      OrderCreator
	TransitionOrder  OrderTransitioner
	Transfers        TransferService
	ReceiveStock     StockReceiver
	UpdateSetting    SettingUpdater
	StockLevels      StockLevelsReader
	Movements        MovementsReader
	Reconciliation   ReconciliationReader
	OrderHistory     OrderHistoryReader
	PendingTransfers PendingTransfersReader
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h Handlers
}

func NewServer(handlers Handlers) *Server {
	return &Server{h: handlers}
}
