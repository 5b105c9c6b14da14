// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Handlers read straight from the tables with SQL and return read models;
// they never lock rows and never go through the stock ledger.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetStockLevelsQueryIsNotConstructed = errors.New(
		"GetStockLevelsQuery must be created via NewGetStockLevelsQuery constructor",
	)
)

// GetStockLevelsQuery lists on-hand quantities, optionally for one location.
//
// Example:
//
//	van, _ := kernel.Van(agentID)
//	query := NewGetStockLevelsQuery(&van)
//	handler := NewGetStockLevelsQueryHandler(db, StaticVisibility{HideZeroQuantities: true})
//
//	levels, err := handler.Handle(ctx, query)
type GetStockLevelsQuery struct {
	location *kernel.StockLocation
	guard    guard.ConstructorGuard
}

// NewGetStockLevelsQuery creates the query. A nil location lists every
// location.
func NewGetStockLevelsQuery(location *kernel.StockLocation) (GetStockLevelsQuery, error) {
	if location != nil {
		if err := location.Validate(); err != nil {
			return GetStockLevelsQuery{}, err
		}
		copied := *location
		location = &copied
	}
	return GetStockLevelsQuery{location: location, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetStockLevelsQuery) Validate() error {
	return q.guard.Validate(ErrGetStockLevelsQueryIsNotConstructed)
}

// Location returns the filter, or nil for all locations.
func (q GetStockLevelsQuery) Location() *kernel.StockLocation {
	return q.location
}

// StockLevelView is one row of a stock listing.
type StockLevelView struct {
	Location  kernel.StockLocation
	ProductID kernel.UUID
	Quantity  int64
	UpdatedAt time.Time
}
