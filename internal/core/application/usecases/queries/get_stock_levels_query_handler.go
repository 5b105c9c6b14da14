package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetStockLevelsQueryHandler reads stock_levels and applies the visibility
// configuration in effect.
type GetStockLevelsQueryHandler struct {
	db         *gorm.DB
	visibility VisibilitySource
}

func NewGetStockLevelsQueryHandler(db *gorm.DB, visibility VisibilitySource) GetStockLevelsQueryHandler {
	if visibility == nil {
		visibility = StaticVisibility{}
	}
	return GetStockLevelsQueryHandler{db: db, visibility: visibility}
}

// Handle returns levels ordered by location then product.
func (h GetStockLevelsQueryHandler) Handle(ctx context.Context, query GetStockLevelsQuery) ([]StockLevelView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	cfg, err := h.visibility.Visibility(ctx)
	if err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).
		Table("stock_levels").
		Select("location_kind, location_agent_id, product_id, quantity, updated_at")
	if loc := query.Location(); loc != nil {
		stmt = stmt.Where("location_kind = ? AND location_agent_id = ?", string(loc.Kind()), loc.AgentID().Bytes())
	}
	if cfg.HideZeroQuantities {
		stmt = stmt.Where("quantity <> 0")
	}
	if len(cfg.ProductIDs) > 0 {
		stmt = stmt.Where("product_id IN ?", productBytes(cfg.ProductIDs))
	}

	rows, err := stmt.Order("location_kind, location_agent_id, product_id").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := make([]StockLevelView, 0)
	for rows.Next() {
		var (
			view      StockLevelView
			kind      string
			agentID   uuid.UUID
			productID uuid.UUID
		)
		if err = rows.Scan(&kind, &agentID, &productID, &view.Quantity, &view.UpdatedAt); err != nil {
			return nil, err
		}

		if view.Location, err = locationFromRow(kind, agentID); err != nil {
			return nil, err
		}
		if view.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		levels = append(levels, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return levels, nil
}

func productBytes(ids []kernel.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Bytes())
	}
	return out
}

// locationFromRow rebuilds a location from its columns. Warehouse rows carry
// the nil agent id.
func locationFromRow(kind string, agentID uuid.UUID) (kernel.StockLocation, error) {
	var agent kernel.UUID
	if agentID != uuid.Nil {
		var err error
		if agent, err = kernel.UUIDFromBytes(agentID[:]); err != nil {
			return kernel.StockLocation{}, err
		}
	}
	return kernel.RestoreStockLocation(kind, agent)
}
