package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// LocationKind distinguishes the central warehouse from a sales agent's van.
type LocationKind string

const (
	LocationWarehouse LocationKind = "warehouse"
	LocationVan       LocationKind = "van"
)

// ErrLocationIsNotConstructed is returned when a zero-value StockLocation is used.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"stock location must be created via Warehouse, Van or RestoreStockLocation")

// StockLocation identifies where stock is held: the single warehouse, or the
// van of exactly one sales agent. The zero value is invalid.
//
// Example:
//
//	from := kernel.Warehouse()
//	to, err := kernel.Van(agentID)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(to) // van:550e8400-e29b-41d4-a716-446655440000
type StockLocation struct {
	kind    LocationKind
	agentID UUID
	guard   guard.ConstructorGuard
}

// Warehouse returns the central warehouse location.
func Warehouse() StockLocation {
	return StockLocation{
		kind:  LocationWarehouse,
		guard: guard.NewConstructorGuard(),
	}
}

// Van returns the van location of the given sales agent.
//
// Parameters:
//   - agentID: the owning sales agent, must be a constructed UUID
//
// Returns:
//   - StockLocation: the van location
//   - error: ValueIsRequiredError when agentID is the zero value
func Van(agentID UUID) (StockLocation, error) {
	if agentID.IsZero() {
		return StockLocation{}, errs.NewValueIsRequiredError("agentID")
	}
	return StockLocation{
		kind:    LocationVan,
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// RestoreStockLocation rebuilds a location from its persisted kind and agent.
// Warehouse rows carry the zero agent, which is ignored.
func RestoreStockLocation(kind string, agentID UUID) (StockLocation, error) {
	switch LocationKind(kind) {
	case LocationWarehouse:
		return Warehouse(), nil
	case LocationVan:
		return Van(agentID)
	default:
		return StockLocation{}, errs.NewValueIsInvalidErrorWithCause("location kind",
			fmt.Errorf("unknown kind %q", kind))
	}
}

// Validate returns ErrLocationIsNotConstructed for the zero value.
func (l StockLocation) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

func (l StockLocation) Kind() LocationKind {
	return l.kind
}

// AgentID returns the van owner, or the zero UUID for the warehouse.
func (l StockLocation) AgentID() UUID {
	return l.agentID
}

func (l StockLocation) IsWarehouse() bool {
	return l.kind == LocationWarehouse
}

func (l StockLocation) IsEqual(other StockLocation) bool {
	return l.kind == other.kind && l.agentID.IsEqual(other.agentID)
}

// String renders "warehouse" or "van:<agentID>". The value is also used as a
// stable sort key when several rows must be locked in one transaction.
func (l StockLocation) String() string {
	if l.kind == LocationVan {
		return string(LocationVan) + ":" + l.agentID.String()
	}
	return string(l.kind)
}
