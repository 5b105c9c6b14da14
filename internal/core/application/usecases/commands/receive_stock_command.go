package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrReceiveStockCommandIsNotConstructed = errors.New(
	"ReceiveStockCommand must be created via NewReceiveStockCommand or NewWriteOffStockCommand",
)

// ReceiveStockCommand books stock into the warehouse (transfer_in) or writes
// it off (transfer_out). These are the only movements of warehouse stock that
// are not tied to an order or a transfer request.
type ReceiveStockCommand struct { //nolint:recvcheck //using for validation
	productID kernel.UUID
	quantity  int64
	reason    stock.Reason
	reference string
	actor     kernel.Actor

	guard guard.ConstructorGuard
}

// NewReceiveStockCommand books quantity units of a product into the warehouse.
// reference is free text such as a supplier delivery note number.
func NewReceiveStockCommand(
	productID kernel.UUID,
	quantity int64,
	reference string,
	actor kernel.Actor,
) (ReceiveStockCommand, error) {
	return newWarehouseStockCommand(productID, quantity, stock.ReasonTransferIn, reference, actor)
}

// NewWriteOffStockCommand removes quantity units of a product from the warehouse.
func NewWriteOffStockCommand(
	productID kernel.UUID,
	quantity int64,
	reference string,
	actor kernel.Actor,
) (ReceiveStockCommand, error) {
	return newWarehouseStockCommand(productID, quantity, stock.ReasonTransferOut, reference, actor)
}

func newWarehouseStockCommand(
	productID kernel.UUID,
	quantity int64,
	reason stock.Reason,
	reference string,
	actor kernel.Actor,
) (ReceiveStockCommand, error) {
	cmd := ReceiveStockCommand{
		reason:    reason,
		reference: strings.TrimSpace(reference),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setProductID(productID),
		cmd.setQuantity(quantity),
		cmd.setActor(actor),
	); err != nil {
		return ReceiveStockCommand{}, err
	}

	return cmd, nil
}

func (c ReceiveStockCommand) Validate() error {
	return c.guard.Validate(ErrReceiveStockCommandIsNotConstructed)
}

func (c ReceiveStockCommand) ProductID() kernel.UUID { return c.productID }
func (c ReceiveStockCommand) Quantity() int64        { return c.quantity }
func (c ReceiveStockCommand) Reason() stock.Reason   { return c.reason }
func (c ReceiveStockCommand) Reference() string      { return c.reference }
func (c ReceiveStockCommand) Actor() kernel.Actor    { return c.actor }

// IsWriteOff reports whether the command removes stock.
func (c ReceiveStockCommand) IsWriteOff() bool {
	return c.reason == stock.ReasonTransferOut
}

func (c *ReceiveStockCommand) setProductID(productID kernel.UUID) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	c.productID = productID
	return nil
}

func (c *ReceiveStockCommand) setQuantity(quantity int64) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	c.quantity = quantity
	return nil
}

func (c *ReceiveStockCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	c.actor = actor
	return nil
}
