// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// It stores the order aggregate in orders and order_lines, and the append-only
// audit trail in order_action_logs.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Lines live in their own table and are written once, together with the order.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Number     string    `gorm:"type:varchar(32);not null;uniqueIndex"`
	AgentID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(32);not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Lines      []LineDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// LineDTO is one immutable order line.
type LineDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int64     `gorm:"not null"`
}

func (LineDTO) TableName() string {
	return "order_lines"
}

// ActionLogDTO is one audit row. Metadata is a JSON object.
type ActionLogDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus string    `gorm:"type:varchar(32)"`
	ToStatus   string    `gorm:"type:varchar(32);not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole  string    `gorm:"type:varchar(32);not null"`
	Reason     string    `gorm:"type:text"`
	Notes      string    `gorm:"type:text"`
	Metadata   string    `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (ActionLogDTO) TableName() string {
	return "order_action_logs"
}

// fromDomain converts an order aggregate with its lines to the database representation.
func fromDomain(o *order.Order) OrderDTO {
	lines := make([]LineDTO, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		lines = append(lines, LineDTO{
			OrderID:   o.ID().Bytes(),
			ProductID: l.ProductID().Bytes(),
			Quantity:  l.Quantity(),
		})
	}

	return OrderDTO{
		ID:         o.ID().Bytes(),
		Number:     o.Number(),
		AgentID:    o.AgentID().Bytes(),
		CustomerID: o.CustomerID().Bytes(),
		Status:     o.Status().String(),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
		Lines:      lines,
	}
}

// toDomain rebuilds the aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(dto.Lines))
	for _, l := range dto.Lines {
		productID, idErr := kernel.UUIDFromBytes(l.ProductID[:])
		if idErr != nil {
			return nil, idErr
		}
		line, lineErr := order.NewLine(productID, l.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.RestoreOrder(id, dto.Number, agentID, customerID, lines, order.Status(dto.Status),
		dto.CreatedAt, dto.UpdatedAt)
}

func actionLogFromDomain(entry *order.ActionLog) (ActionLogDTO, error) {
	metadata, err := json.Marshal(entry.Metadata())
	if err != nil {
		return ActionLogDTO{}, err
	}

	return ActionLogDTO{
		ID:         entry.ID().Bytes(),
		OrderID:    entry.OrderID().Bytes(),
		FromStatus: entry.From().String(),
		ToStatus:   entry.To().String(),
		ActorID:    entry.ActorID().Bytes(),
		ActorRole:  entry.ActorRole().String(),
		Reason:     entry.Reason(),
		Notes:      entry.Notes(),
		Metadata:   string(metadata),
		CreatedAt:  entry.CreatedAt(),
	}, nil
}

// ActionLogToDomain rebuilds an audit row. Metadata values come back in their
// JSON shapes, so a list of movement ids reads as []any.
func ActionLogToDomain(dto ActionLogDTO) (*order.ActionLog, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{}
	if dto.Metadata != "" {
		if err = json.Unmarshal([]byte(dto.Metadata), &metadata); err != nil {
			return nil, err
		}
	}

	return order.RestoreActionLog(id, orderID, order.Status(dto.FromStatus), order.Status(dto.ToStatus),
		actorID, kernel.Role(dto.ActorRole), dto.Reason, dto.Notes, metadata, dto.CreatedAt)
}
