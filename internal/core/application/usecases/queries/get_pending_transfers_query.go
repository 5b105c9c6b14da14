package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetPendingTransfersQueryIsNotConstructed = errors.New(
		"GetPendingTransfersQuery must be created via NewGetPendingTransfersQuery constructor",
	)
)

// GetPendingTransfersQuery lists transfer requests still awaiting
// confirmation or completion. A zero agent id lists every agent.
type GetPendingTransfersQuery struct {
	agentID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetPendingTransfersQuery(agentID kernel.UUID) GetPendingTransfersQuery {
	return GetPendingTransfersQuery{agentID: agentID, guard: guard.NewConstructorGuard()}
}

func (q GetPendingTransfersQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingTransfersQueryIsNotConstructed)
}

func (q GetPendingTransfersQuery) AgentID() kernel.UUID {
	return q.agentID
}

type TransferLineView struct {
	ProductID kernel.UUID
	Quantity  int64
}

// PendingTransferView never carries the confirmation code hashes.
type PendingTransferView struct {
	ID                    kernel.UUID
	Kind                  transfer.Kind
	AgentID               kernel.UUID
	InitiatorID           kernel.UUID
	CounterpartyID        kernel.UUID
	InitiatorConfirmed    bool
	CounterpartyConfirmed bool
	Lines                 []TransferLineView
	Note                  string
	CreatedAt             time.Time
	ExpiresAt             time.Time
}
