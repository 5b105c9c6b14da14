package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns ObjectNotFoundError when the order does not exist.
func (h GetOrderHistoryQueryHandler) Handle(ctx context.Context, query GetOrderHistoryQuery) (OrderHistoryView, error) {
	if err := query.Validate(); err != nil {
		return OrderHistoryView{}, err
	}
	db := h.db.WithContext(ctx)
	orderID := query.OrderID()

	view := OrderHistoryView{ID: orderID}
	var (
		agentID, customerID uuid.UUID
		status              string
	)
	err := db.Raw(
		"SELECT number, agent_id, customer_id, status, created_at, updated_at FROM orders WHERE id = ?",
		orderID.Bytes(),
	).Row().Scan(&view.Number, &agentID, &customerID, &status, &view.CreatedAt, &view.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderHistoryView{}, errs.NewObjectNotFoundError("order", orderID)
	}
	if err != nil {
		return OrderHistoryView{}, err
	}
	if view.AgentID, err = kernel.UUIDFromBytes(agentID[:]); err != nil {
		return OrderHistoryView{}, err
	}
	if view.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
		return OrderHistoryView{}, err
	}
	view.Status = order.Status(status)

	if view.Lines, err = h.lines(db, orderID); err != nil {
		return OrderHistoryView{}, err
	}
	if view.Entries, err = h.entries(db, orderID); err != nil {
		return OrderHistoryView{}, err
	}

	return view, nil
}

func (h GetOrderHistoryQueryHandler) lines(db *gorm.DB, orderID kernel.UUID) ([]OrderLineView, error) {
	rows, err := db.Raw(
		"SELECT product_id, quantity FROM order_lines WHERE order_id = ? ORDER BY product_id",
		orderID.Bytes(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]OrderLineView, 0)
	for rows.Next() {
		var (
			productID uuid.UUID
			line      OrderLineView
		)
		if err = rows.Scan(&productID, &line.Quantity); err != nil {
			return nil, err
		}
		if line.ProductID, err = kernel.UUIDFromBytes(productID[:]); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (h GetOrderHistoryQueryHandler) entries(db *gorm.DB, orderID kernel.UUID) ([]HistoryEntry, error) {
	rows, err := db.Raw(
		`SELECT id, from_status, to_status, actor_id, actor_role, reason, notes, metadata, created_at
		FROM order_action_logs WHERE order_id = ? ORDER BY created_at, id`,
		orderID.Bytes(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			entry                    HistoryEntry
			id, actorID              uuid.UUID
			from, to, role, metadata string
		)
		if err = rows.Scan(&id, &from, &to, &actorID, &role, &entry.Reason, &entry.Notes, &metadata,
			&entry.CreatedAt); err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if entry.ActorID, err = kernel.UUIDFromBytes(actorID[:]); err != nil {
			return nil, err
		}
		entry.From = order.Status(from)
		entry.To = order.Status(to)
		entry.ActorRole = kernel.Role(role)

		entry.Metadata = map[string]any{}
		if metadata != "" {
			if err = json.Unmarshal([]byte(metadata), &entry.Metadata); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
