// Package services provides the domain services of the fulfillment core.
//
// The package includes:
//   - StockLedger: the only code allowed to change a stock quantity. Every
//     mutation re-reads the row under lock, refuses to go below zero and appends
//     exactly one movement.
//   - SequenceCounter: row-locked integer sequences for human-facing numbers.
//   - AvailabilityChecker: a non-binding, unlocked comparison of requested
//     quantities against on-hand stock, used for audit snapshots.
//
// StockLedger and SequenceCounter are bound to one unit of work and must be
// called while its transaction is open.
package services
