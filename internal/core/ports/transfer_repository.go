package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"
)

// TransferRepository persists transfer requests with their lines embedded.
type TransferRepository interface {
	Add(ctx context.Context, request *transfer.Request) error
	Update(ctx context.Context, request *transfer.Request) error
	Get(ctx context.Context, id kernel.UUID) (*transfer.Request, error)

	// GetForUpdate locks the request row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*transfer.Request, error)

	// ListOverdue returns up to limit requests that are neither completed,
	// cancelled nor marked expired, and whose expires_at is not after now.
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*transfer.Request, error)
}
