package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand registers a new order for an agent's customer.
//
// Example:
//
//	line, _ := order.NewLine(productID, 3)
//	cmd, err := NewCreateOrderCommand(agentID, customerID, []order.Line{line}, actor)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	res := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	agentID    kernel.UUID
	customerID kernel.UUID
	lines      []order.Line
	actor      kernel.Actor

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates identifiers, lines and the actor.
func NewCreateOrderCommand(
	agentID, customerID kernel.UUID,
	lines []order.Line,
	actor kernel.Actor,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setAgentID(agentID),
		cmd.setCustomerID(customerID),
		cmd.setLines(lines),
		cmd.setActor(actor),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) AgentID() kernel.UUID    { return c.agentID }
func (c CreateOrderCommand) CustomerID() kernel.UUID { return c.customerID }
func (c CreateOrderCommand) Actor() kernel.Actor     { return c.actor }

func (c CreateOrderCommand) Lines() []order.Line {
	out := make([]order.Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CreateOrderCommand) setAgentID(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	c.agentID = agentID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setLines(lines []order.Line) error {
	if len(lines) == 0 {
		return errs.NewValueIsRequiredError("lines")
	}
	for _, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	c.lines = make([]order.Line, len(lines))
	copy(c.lines, lines)
	return nil
}

func (c *CreateOrderCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
