package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetStockMovementsQueryHandler struct {
	db *gorm.DB
}

func NewGetStockMovementsQueryHandler(db *gorm.DB) GetStockMovementsQueryHandler {
	return GetStockMovementsQueryHandler{db: db}
}

func (h GetStockMovementsQueryHandler) Handle(ctx context.Context, query GetStockMovementsQuery) ([]MovementView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	filter := query.Filter()

	stmt := h.db.WithContext(ctx).
		Table("stock_movements").
		Select("id, location_kind, location_agent_id, product_id, delta, reason, correlation_ref, actor_id, created_at")
	if filter.Location != nil {
		stmt = stmt.Where("location_kind = ? AND location_agent_id = ?",
			string(filter.Location.Kind()), filter.Location.AgentID().Bytes())
	}
	if !filter.ProductID.IsZero() {
		stmt = stmt.Where("product_id = ?", filter.ProductID.Bytes())
	}
	if filter.CorrelationRef != "" {
		stmt = stmt.Where("correlation_ref = ?", filter.CorrelationRef)
	}

	rows, err := stmt.Order("created_at DESC, id").Limit(filter.Limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]MovementView, 0)
	for rows.Next() {
		var (
			view                          MovementView
			id, agentID, productID, actor uuid.UUID
			kind, reason                  string
		)
		if err = rows.Scan(&id, &kind, &agentID, &productID, &view.Delta, &reason, &view.CorrelationRef, &actor,
			&view.CreatedAt); err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.Location, err = locationFromRow(kind, agentID); err != nil {
			return nil, err
		}
		if view.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		if actor != uuid.Nil {
			if view.ActorID, err = kernel.UUIDFromBytes(actor[:]); err != nil {
				return nil, err
			}
		}
		view.Reason = stock.Reason(reason)
		movements = append(movements, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return movements, nil
}
