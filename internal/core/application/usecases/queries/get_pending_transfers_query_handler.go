package queries

import (
	"context"
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetPendingTransfersQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGetPendingTransfersQueryHandler(db *gorm.DB, now func() time.Time) GetPendingTransfersQueryHandler {
	if now == nil {
		now = time.Now
	}
	return GetPendingTransfersQueryHandler{db: db, now: now}
}

// Handle returns requests that are neither completed nor cancelled and either
// still within their deadline or confirmed by both parties, oldest first.
func (h GetPendingTransfersQueryHandler) Handle(
	ctx context.Context,
	query GetPendingTransfersQuery,
) ([]PendingTransferView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).
		Table("transfer_requests").
		Select(`id, kind, agent_id, initiator_actor_id, counterparty_actor_id,
			initiator_confirmed_at IS NOT NULL, counterparty_confirmed_at IS NOT NULL,
			lines, note, created_at, expires_at`).
		Where("completed_at IS NULL AND cancelled_at IS NULL").
		Where("(expires_at > ? AND expired_at IS NULL) OR "+
			"(initiator_confirmed_at IS NOT NULL AND counterparty_confirmed_at IS NOT NULL)", h.now())
	if !query.AgentID().IsZero() {
		stmt = stmt.Where("agent_id = ?", query.AgentID().Bytes())
	}

	rows, err := stmt.Order("created_at, id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transfers := make([]PendingTransferView, 0)
	for rows.Next() {
		var (
			view                                 PendingTransferView
			id, agentID, initiator, counterparty uuid.UUID
			kind, lines                          string
		)
		if err = rows.Scan(&id, &kind, &agentID, &initiator, &counterparty,
			&view.InitiatorConfirmed, &view.CounterpartyConfirmed,
			&lines, &view.Note, &view.CreatedAt, &view.ExpiresAt); err != nil {
			return nil, err
		}

		for dst, src := range map[*kernel.UUID]uuid.UUID{
			&view.ID:             id,
			&view.AgentID:        agentID,
			&view.InitiatorID:    initiator,
			&view.CounterpartyID: counterparty,
		} {
			if *dst, err = kernel.UUIDFromBytes(src[:]); err != nil {
				return nil, err
			}
		}
		view.Kind = transfer.Kind(kind)
		if view.Lines, err = decodeTransferLines(lines); err != nil {
			return nil, err
		}
		transfers = append(transfers, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return transfers, nil
}

func decodeTransferLines(raw string) ([]TransferLineView, error) {
	var stored []struct {
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, err
	}

	lines := make([]TransferLineView, 0, len(stored))
	for _, l := range stored {
		productID, err := kernel.UUIDFromString(l.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, TransferLineView{ProductID: productID, Quantity: l.Quantity})
	}
	return lines, nil
}
