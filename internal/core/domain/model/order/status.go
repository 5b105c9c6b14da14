package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	pending <──> on_hold
//	   │            │
//	   ├────────────┴──> ready_for_handover ──> handed_to_sales_rep ──> completed
//	   │                                                 │
//	approved, preparing (legacy) ──> ready_for_handover  │
//	                                                     │
//	any non-terminal state ──────────────────────────────┴──> cancelled
//
// approved and preparing are kept for rows written by earlier versions of the
// workflow; nothing transitions into them any more.
type Status string

const (
	Pending          Status = "pending"
	OnHold           Status = "on_hold"
	Approved         Status = "approved"
	Preparing        Status = "preparing"
	ReadyForHandover Status = "ready_for_handover"
	HandedToSalesRep Status = "handed_to_sales_rep"
	Completed        Status = "completed"
	Cancelled        Status = "cancelled"
)

var validStatuses = map[Status]struct{}{
	Pending:          {},
	OnHold:           {},
	Approved:         {},
	Preparing:        {},
	ReadyForHandover: {},
	HandedToSalesRep: {},
	Completed:        {},
	Cancelled:        {},
}

// Validate checks that s is one of the known statuses, for values read from
// storage or requests.
func (s Status) Validate() error {
	if _, ok := validStatuses[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition can leave s.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// NonTerminalStatuses lists every status an order can still leave.
func NonTerminalStatuses() []Status {
	return []Status{Pending, OnHold, Approved, Preparing, ReadyForHandover, HandedToSalesRep}
}

// AllStatuses lists every known status.
func AllStatuses() []Status {
	return append(NonTerminalStatuses(), Completed, Cancelled)
}
