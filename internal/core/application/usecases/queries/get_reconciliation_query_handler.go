package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const reconciliationSQL = `
SELECT
    COALESCE(l.location_kind, m.location_kind)         AS location_kind,
    COALESCE(l.location_agent_id, m.location_agent_id) AS location_agent_id,
    COALESCE(l.product_id, m.product_id)               AS product_id,
    COALESCE(l.quantity, 0)                            AS quantity,
    COALESCE(m.total, 0)                               AS movement_sum
FROM stock_levels l
FULL OUTER JOIN (
    SELECT location_kind, location_agent_id, product_id, SUM(delta)::bigint AS total
    FROM stock_movements
    GROUP BY location_kind, location_agent_id, product_id
) m
    ON  m.location_kind = l.location_kind
    AND m.location_agent_id = l.location_agent_id
    AND m.product_id = l.product_id
ORDER BY 1, 2, 3`

type GetReconciliationQueryHandler struct {
	db *gorm.DB
}

func NewGetReconciliationQueryHandler(db *gorm.DB) GetReconciliationQueryHandler {
	return GetReconciliationQueryHandler{db: db}
}

func (h GetReconciliationQueryHandler) Handle(ctx context.Context, query GetReconciliationQuery) (ReconciliationReport, error) {
	if err := query.Validate(); err != nil {
		return ReconciliationReport{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(reconciliationSQL).Rows()
	if err != nil {
		return ReconciliationReport{}, err
	}
	defer rows.Close()

	report := ReconciliationReport{Mismatches: make([]Mismatch, 0)}
	for rows.Next() {
		var (
			kind               string
			agentID, productID uuid.UUID
			quantity, total    int64
		)
		if err = rows.Scan(&kind, &agentID, &productID, &quantity, &total); err != nil {
			return ReconciliationReport{}, err
		}
		report.Checked++
		if quantity == total {
			continue
		}

		mismatch := Mismatch{Quantity: quantity, MovementSum: total}
		if mismatch.Location, err = locationFromRow(kind, agentID); err != nil {
			return ReconciliationReport{}, err
		}
		if mismatch.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return ReconciliationReport{}, err
		}
		report.Mismatches = append(report.Mismatches, mismatch)
	}

	if err = rows.Err(); err != nil {
		return ReconciliationReport{}, err
	}

	return report, nil
}
