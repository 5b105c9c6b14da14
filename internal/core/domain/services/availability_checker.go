package services

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// AvailabilityLine is the result for one order line.
type AvailabilityLine struct {
	ProductID string `json:"product_id"`
	Requested int64  `json:"requested"`
	OnHand    int64  `json:"on_hand"`
	Shortfall int64  `json:"shortfall"`
}

// AvailabilitySnapshot is stored in the action log for traceability. It grants
// no reservation.
type AvailabilitySnapshot struct {
	Location   string             `json:"location"`
	Sufficient bool               `json:"sufficient"`
	Lines      []AvailabilityLine `json:"lines"`
	CheckedAt  time.Time          `json:"checked_at"`
}

// AsMetadata converts the snapshot into the generic form stored in action log
// metadata.
func (s AvailabilitySnapshot) AsMetadata() map[string]any {
	lines := make([]any, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, map[string]any{
			"product_id": l.ProductID,
			"requested":  l.Requested,
			"on_hand":    l.OnHand,
			"shortfall":  l.Shortfall,
		})
	}
	return map[string]any{
		"location":   s.Location,
		"sufficient": s.Sufficient,
		"lines":      lines,
		"checked_at": s.CheckedAt.UTC().Format(time.RFC3339),
	}
}

// AvailabilityChecker compares order lines against on-hand stock with plain,
// unlocked reads.
type AvailabilityChecker struct {
	levels ports.StockRepository
	now    func() time.Time
}

func NewAvailabilityChecker(levels ports.StockRepository, now func() time.Time) AvailabilityChecker {
	return AvailabilityChecker{levels: levels, now: now}
}

// Check reports, per line, how much of the requested quantity is missing at
// location. A shortfall is information, not an error.
func (c AvailabilityChecker) Check(
	ctx context.Context,
	location kernel.StockLocation,
	lines []order.Line,
) (AvailabilitySnapshot, error) {
	snapshot := AvailabilitySnapshot{
		Location:   location.String(),
		Sufficient: true,
		Lines:      make([]AvailabilityLine, 0, len(lines)),
		CheckedAt:  c.now(),
	}

	for _, line := range lines {
		level, err := c.levels.Get(ctx, location, line.ProductID())
		if err != nil {
			return AvailabilitySnapshot{}, err
		}

		result := AvailabilityLine{
			ProductID: line.ProductID().String(),
			Requested: line.Quantity(),
			OnHand:    level.Quantity(),
		}
		if result.OnHand < result.Requested {
			result.Shortfall = result.Requested - result.OnHand
			snapshot.Sufficient = false
		}
		snapshot.Lines = append(snapshot.Lines, result)
	}

	return snapshot, nil
}
