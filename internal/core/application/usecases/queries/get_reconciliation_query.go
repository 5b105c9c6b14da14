package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetReconciliationQueryIsNotConstructed = errors.New(
		"GetReconciliationQuery must be created via NewGetReconciliationQuery constructor",
	)
)

// GetReconciliationQuery compares every stock level with the sum of its
// movements. A healthy ledger reports no mismatches.
type GetReconciliationQuery struct {
	guard guard.ConstructorGuard
}

func NewGetReconciliationQuery() GetReconciliationQuery {
	return GetReconciliationQuery{guard: guard.NewConstructorGuard()}
}

func (q GetReconciliationQuery) Validate() error {
	return q.guard.Validate(ErrGetReconciliationQueryIsNotConstructed)
}

// Mismatch is a (location, product) whose level differs from its movements.
// A level with no row reads as 0, as does a movement sum with no movements.
type Mismatch struct {
	Location    kernel.StockLocation
	ProductID   kernel.UUID
	Quantity    int64
	MovementSum int64
}

// ReconciliationReport lists the mismatches found among Checked pairs.
type ReconciliationReport struct {
	Checked    int
	Mismatches []Mismatch
}

func (r ReconciliationReport) Consistent() bool {
	return len(r.Mismatches) == 0
}
