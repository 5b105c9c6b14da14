// Package commands contains the operations that modify system state.
// Every handler follows the same shape: validate the command, open a unit of
// work, mutate aggregates through the repositories it exposes, commit, and
// report a Result.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	// TxManager handles the database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
		InTransaction() bool
	}

	// StockRepoFactory exposes the ledger tables within a transaction.
	StockRepoFactory interface {
		StockRepository() ports.StockRepository
		MovementRepository() ports.MovementRepository
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	TransferRepoFactory interface {
		TransferRepository() ports.TransferRepository
	}

	CounterRepoFactory interface {
		CounterRepository() ports.CounterRepository
	}

	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	InvoiceLookupFactory interface {
		InvoiceLookup() ports.InvoiceLookup
	}

	// LedgerUoW manages transactions that only touch stock.
	LedgerUoW interface {
		TxManager
		StockRepoFactory
	}

	LedgerUoWFactory interface {
		Create() LedgerUoW
	}

	// OrderUoW manages transactions for the order lifecycle. Acceptance and
	// post-handover cancellation move stock in the same transaction as the
	// status change.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	//   ledger := services.NewStockLedger(uow, uow.StockRepository(), uow.MovementRepository(), actorID, time.Now)
	//   // ... transfer lines, transition, append action log
	//
	//   err = uow.Commit(ctx)
	OrderUoW interface {
		TxManager
		StockRepoFactory
		OrderRepoFactory
		CounterRepoFactory
		OutboxRepoFactory
		InvoiceLookupFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// TransferUoW manages transactions for dual-confirmation requests.
	TransferUoW interface {
		TxManager
		StockRepoFactory
		TransferRepoFactory
		OutboxRepoFactory
	}

	TransferUoWFactory interface {
		Create() TransferUoW
	}

	// OutboxUoW manages transactions of the outbox relay.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
