package ports

import (
	"context"
)

// UnitOfWorkFactory creates a new UnitOfWork for each command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// TxState reports whether a transaction is open. The stock ledger and the
// sequence counter refuse to mutate anything without one.
type TxState interface {
	InTransaction() bool
}

// UnitOfWork represents a business transaction boundary.
// Client code must explicitly manage the transaction lifecycle; every
// repository returned by the accessors uses the transaction started by Begin.
type UnitOfWork interface {
	TxState

	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	StockRepository() StockRepository
	MovementRepository() MovementRepository
	OrderRepository() OrderRepository
	TransferRepository() TransferRepository
	CounterRepository() CounterRepository
	OutboxRepository() OutboxRepository
	InvoiceLookup() InvoiceLookup
}
