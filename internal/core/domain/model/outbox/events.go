package outbox

import "time"

// OrderStatusChanged is published on every order transition.
type OrderStatusChanged struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ActorID     string    `json:"actor_id"`
	ActorRole   string    `json:"actor_role"`
	MovementIDs []string  `json:"movement_ids,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TransferCompleted is published when a transfer request applied its lines.
type TransferCompleted struct {
	RequestID   string    `json:"request_id"`
	Kind        string    `json:"kind"`
	AgentID     string    `json:"agent_id"`
	MovementIDs []string  `json:"movement_ids"`
	OccurredAt  time.Time `json:"occurred_at"`
}
