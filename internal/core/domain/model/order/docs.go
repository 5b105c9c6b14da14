// Package order provides the Order aggregate and its fulfillment lifecycle.
//
// The package includes:
//   - Order: the aggregate root holding identity, number, agent, customer and
//     the immutable line items
//   - Status: the lifecycle states, from pending to completed or cancelled
//   - TransitionTable: the data-driven matrix of legal (from, to) moves, the
//     roles allowed to perform each and whether a reason is mandatory
//   - ActionLog: the append-only audit row written for every transition
//
// Key business rules:
//   - lines are fixed at creation; every quantity is positive and every
//     product appears once
//   - status changes only through Order.Transition, which consults the table
//   - completed and cancelled are terminal
//
// Stock never moves inside this package. The application layer performs the
// ledger transfer at acceptance (ready_for_handover to handed_to_sales_rep)
// and the reversal at cancellation after handover, then records the new status.
package order
