package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
		"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
	)
)

// GetOrderHistoryQuery returns an order with its audit trail in the order the
// entries were written.
type GetOrderHistoryQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID kernel.UUID) (GetOrderHistoryQuery, error) {
	if orderID.IsZero() {
		return GetOrderHistoryQuery{}, errs.NewValueIsRequiredError("orderID")
	}
	return GetOrderHistoryQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID {
	return q.orderID
}

type OrderLineView struct {
	ProductID kernel.UUID
	Quantity  int64
}

// HistoryEntry is one recorded status change.
type HistoryEntry struct {
	ID        kernel.UUID
	From      order.Status
	To        order.Status
	ActorID   kernel.UUID
	ActorRole kernel.Role
	Reason    string
	Notes     string
	Metadata  map[string]any
	CreatedAt time.Time
}

type OrderHistoryView struct {
	ID         kernel.UUID
	Number     string
	AgentID    kernel.UUID
	CustomerID kernel.UUID
	Status     order.Status
	Lines      []OrderLineView
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Entries    []HistoryEntry
}
