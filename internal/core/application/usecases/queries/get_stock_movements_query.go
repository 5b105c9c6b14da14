package queries

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	DefaultMovementsLimit = 100
	MaxMovementsLimit     = 1000
)

var (
	ErrGetStockMovementsQueryIsNotConstructed = errors.New(
		"GetStockMovementsQuery must be created via NewGetStockMovementsQuery constructor",
	)
)

// MovementFilter selects movements. Zero fields do not filter.
type MovementFilter struct {
	Location       *kernel.StockLocation
	ProductID      kernel.UUID
	CorrelationRef string
	// Limit defaults to DefaultMovementsLimit when 0.
	Limit int
}

// GetStockMovementsQuery reads the movement log, newest first.
type GetStockMovementsQuery struct {
	filter MovementFilter
	guard  guard.ConstructorGuard
}

func NewGetStockMovementsQuery(filter MovementFilter) (GetStockMovementsQuery, error) {
	if filter.Location != nil {
		if err := filter.Location.Validate(); err != nil {
			return GetStockMovementsQuery{}, err
		}
		copied := *filter.Location
		filter.Location = &copied
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultMovementsLimit
	}
	if filter.Limit < 0 || filter.Limit > MaxMovementsLimit {
		return GetStockMovementsQuery{}, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxMovementsLimit)
	}
	filter.CorrelationRef = strings.TrimSpace(filter.CorrelationRef)

	return GetStockMovementsQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q GetStockMovementsQuery) Validate() error {
	return q.guard.Validate(ErrGetStockMovementsQueryIsNotConstructed)
}

func (q GetStockMovementsQuery) Filter() MovementFilter {
	return q.filter
}

// MovementView is one entry of the movement log.
type MovementView struct {
	ID             kernel.UUID
	Location       kernel.StockLocation
	ProductID      kernel.UUID
	Delta          int64
	Reason         stock.Reason
	CorrelationRef string
	ActorID        kernel.UUID
	CreatedAt      time.Time
}
