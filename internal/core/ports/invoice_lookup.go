package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// InvoiceLookup reads the invoices owned by the accounting side. An invoiced
// order can no longer have its handover reversed.
type InvoiceLookup interface {
	ExistsForOrder(ctx context.Context, orderID kernel.UUID) (bool, error)
}
