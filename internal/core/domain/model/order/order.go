package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrLineIsNotConstructed = errors.New("Line must be created via NewLine")
)

// Line is one immutable (product, quantity) item of an order.
type Line struct {
	productID kernel.UUID
	quantity  int64
	guard     guard.ConstructorGuard
}

// NewLine creates an order line. quantity must be positive.
func NewLine(productID kernel.UUID, quantity int64) (Line, error) {
	if err := productID.Validate(); err != nil {
		return Line{}, errs.NewValueIsRequiredErrorWithCause("productID", err)
	}
	if quantity <= 0 {
		return Line{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	return Line{productID: productID, quantity: quantity, guard: guard.NewConstructorGuard()}, nil
}

func (l Line) ProductID() kernel.UUID { return l.productID }
func (l Line) Quantity() int64        { return l.quantity }

func (l Line) Validate() error {
	return l.guard.Validate(ErrLineIsNotConstructed)
}

// Order is the aggregate root of the fulfillment lifecycle.
//
// Order follows these invariants:
//   - id, number, agent and customer are set and never change
//   - there is at least one line and no product repeats
//   - status only moves along the TransitionTable passed to Transition
type Order struct {
	id         kernel.UUID
	number     string
	agentID    kernel.UUID
	customerID kernel.UUID
	lines      []Line
	status     Status
	createdAt  time.Time
	updatedAt  time.Time

	isConstructed bool
}

// NewOrder creates a pending order.
//
// Parameters:
//   - id: unique identifier
//   - number: human-facing number minted by the sequence counter
//   - agentID: the sales agent whose van receives the goods at handover
//   - customerID: the ordering customer
//   - lines: at least one line, products unique
//   - now: creation time
//
// Returns:
//   - *Order: the order in Pending status
//   - error: joined validation errors
func NewOrder(
	id kernel.UUID,
	number string,
	agentID kernel.UUID,
	customerID kernel.UUID,
	lines []Line,
	now time.Time,
) (*Order, error) {
	return RestoreOrder(id, number, agentID, customerID, lines, Pending, now, now)
}

// RestoreOrder rebuilds an order from storage.
func RestoreOrder(
	id kernel.UUID,
	number string,
	agentID kernel.UUID,
	customerID kernel.UUID,
	lines []Line,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setAgent(agentID),
		o.setCustomer(customerID),
		o.setLines(lines),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID         { return o.id }
func (o *Order) Number() string          { return o.number }
func (o *Order) AgentID() kernel.UUID    { return o.agentID }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) Status() Status          { return o.status }
func (o *Order) CreatedAt() time.Time    { return o.createdAt }
func (o *Order) UpdatedAt() time.Time    { return o.updatedAt }

// Lines returns a copy of the line items.
func (o *Order) Lines() []Line {
	out := make([]Line, len(o.lines))
	copy(out, o.lines)
	return out
}

// Van returns the stock location of the assigned agent.
func (o *Order) Van() (kernel.StockLocation, error) {
	return kernel.Van(o.agentID)
}

// CanTransition checks a move to status `to` without changing the order.
// Use cases call it before performing side effects such as stock transfers.
func (o *Order) CanTransition(table TransitionTable, to Status, role kernel.Role, reason string) error {
	return table.Check(o.status, to, role, reason)
}

// Transition moves the order to status `to` and returns the previous status.
// The order is unchanged when the table rejects the move.
func (o *Order) Transition(
	table TransitionTable,
	to Status,
	role kernel.Role,
	reason string,
	now time.Time,
) (Status, error) {
	if err := o.CanTransition(table, to, role, reason); err != nil {
		return o.status, err
	}

	prev := o.status
	o.status = to
	o.updatedAt = now
	return prev, nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return errs.NewValueIsRequiredError("number")
	}
	o.number = number
	return nil
}

func (o *Order) setAgent(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("agentID", err)
	}
	o.agentID = agentID
	return nil
}

func (o *Order) setCustomer(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setLines(lines []Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}

	seen := make(map[kernel.UUID]struct{}, len(lines))
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, dup := seen[l.productID]; dup {
			return errs.NewValueIsInvalidErrorWithCause("lines",
				fmt.Errorf("product %s appears more than once", l.productID))
		}
		seen[l.productID] = struct{}{}
	}

	o.lines = make([]Line, len(lines))
	copy(o.lines, lines)
	return nil
}
