// Package stockrepo persists stock levels and the append-only movement log.
package stockrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"

	"github.com/google/uuid"
)

// LevelDTO is one row of stock_levels. Warehouse rows carry the nil agent id.
type LevelDTO struct {
	LocationKind    string    `gorm:"type:varchar(16);primaryKey"`
	LocationAgentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity        int64     `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

func (LevelDTO) TableName() string {
	return "stock_levels"
}

// LocationDTO is the location embedded in a movement row.
type LocationDTO struct {
	Kind    string    `gorm:"type:varchar(16);not null;index:idx_stock_movements_location,priority:1"`
	AgentID uuid.UUID `gorm:"type:uuid;not null;index:idx_stock_movements_location,priority:2"`
}

// MovementDTO is one row of stock_movements. Rows are inserted once and never
// updated.
type MovementDTO struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Location       LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	ProductID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	Delta          int64       `gorm:"not null"`
	Reason         string      `gorm:"type:varchar(32);not null;index"`
	CorrelationRef string      `gorm:"type:varchar(64);index"`
	ActorID        uuid.UUID   `gorm:"type:uuid"`
	CreatedAt      time.Time   `gorm:"not null;index"`
}

func (MovementDTO) TableName() string {
	return "stock_movements"
}

func locationFromDomain(location kernel.StockLocation) LocationDTO {
	return LocationDTO{
		Kind:    string(location.Kind()),
		AgentID: location.AgentID().Bytes(),
	}
}

// LocationToDomain rebuilds a stock location from its persisted columns.
func LocationToDomain(kind string, agentID uuid.UUID) (kernel.StockLocation, error) {
	var agent kernel.UUID
	if agentID != uuid.Nil {
		var err error
		if agent, err = kernel.UUIDFromBytes(agentID[:]); err != nil {
			return kernel.StockLocation{}, err
		}
	}
	return kernel.RestoreStockLocation(kind, agent)
}

func levelToDomain(dto LevelDTO) (*stock.Level, error) {
	location, err := LocationToDomain(dto.LocationKind, dto.LocationAgentID)
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	return stock.RestoreLevel(location, productID, dto.Quantity, dto.UpdatedAt)
}

func movementFromDomain(m *stock.Movement) MovementDTO {
	return MovementDTO{
		ID:             m.ID().Bytes(),
		Location:       locationFromDomain(m.Location()),
		ProductID:      m.ProductID().Bytes(),
		Delta:          m.Delta(),
		Reason:         m.Reason().String(),
		CorrelationRef: m.CorrelationRef(),
		ActorID:        m.ActorID().Bytes(),
		CreatedAt:      m.CreatedAt(),
	}
}
