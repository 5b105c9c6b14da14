package http

import (
	"time"
)

type errorResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Orders

type orderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity"   validate:"gt=0"`
}

type createOrderRequest struct {
	AgentID    string             `json:"agent_id"    validate:"required,uuid"`
	CustomerID string             `json:"customer_id" validate:"required,uuid"`
	Lines      []orderLineRequest `json:"lines"       validate:"required,min=1,dive"`
}

type orderCreatedResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

type transitionOrderRequest struct {
	To     string `json:"to"     validate:"required"`
	Reason string `json:"reason" validate:"max=1000"`
	Notes  string `json:"notes"  validate:"max=4000"`
}

type orderLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type historyEntryResponse struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	ActorID   string         `json:"actor_id"`
	ActorRole string         `json:"actor_role"`
	Reason    string         `json:"reason,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type orderHistoryResponse struct {
	ID         string                 `json:"id"`
	Number     string                 `json:"number"`
	AgentID    string                 `json:"agent_id"`
	CustomerID string                 `json:"customer_id"`
	Status     string                 `json:"status"`
	Lines      []orderLineResponse    `json:"lines"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	History    []historyEntryResponse `json:"history"`
}

// Transfers

type transferLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity"   validate:"ne=0"`
}

type createTransferRequest struct {
	Kind           string                `json:"kind"            validate:"required,oneof=load return adjustment"`
	AgentID        string                `json:"agent_id"        validate:"required,uuid"`
	CounterpartyID string                `json:"counterparty_id" validate:"required,uuid"`
	Lines          []transferLineRequest `json:"lines"           validate:"required,min=1,dive"`
	Note           string                `json:"note"            validate:"max=1000"`
	TTLSeconds     int64                 `json:"ttl_seconds"     validate:"gte=0"`
}

type transferCodesResponse struct {
	Initiator    string `json:"initiator"`
	Counterparty string `json:"counterparty"`
}

type transferCreatedResponse struct {
	ID        string                `json:"id"`
	ExpiresAt time.Time             `json:"expires_at"`
	Codes     transferCodesResponse `json:"codes"`
}

type confirmTransferRequest struct {
	Role string `json:"role" validate:"required,oneof=initiator counterparty"`
	Code string `json:"code" validate:"required,numeric,len=6"`
}

type confirmTransferResponse struct {
	Confirmed bool   `json:"confirmed"`
	Completed bool   `json:"completed"`
	Message   string `json:"message"`
}

type pendingTransferResponse struct {
	ID                    string              `json:"id"`
	Kind                  string              `json:"kind"`
	AgentID               string              `json:"agent_id"`
	InitiatorID           string              `json:"initiator_id"`
	CounterpartyID        string              `json:"counterparty_id"`
	InitiatorConfirmed    bool                `json:"initiator_confirmed"`
	CounterpartyConfirmed bool                `json:"counterparty_confirmed"`
	Lines                 []orderLineResponse `json:"lines"`
	Note                  string              `json:"note,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	ExpiresAt             time.Time           `json:"expires_at"`
}

// Stock

type receiptRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int64  `json:"quantity"   validate:"gt=0"`
	Reference string `json:"reference"  validate:"max=64"`
	WriteOff  bool   `json:"write_off"`
}

type receiptResponse struct {
	MovementID string `json:"movement_id"`
}

type stockLevelResponse struct {
	Location  string    `json:"location"`
	AgentID   string    `json:"agent_id,omitempty"`
	ProductID string    `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type movementResponse struct {
	ID             string    `json:"id"`
	Location       string    `json:"location"`
	AgentID        string    `json:"agent_id,omitempty"`
	ProductID      string    `json:"product_id"`
	Delta          int64     `json:"delta"`
	Reason         string    `json:"reason"`
	CorrelationRef string    `json:"correlation_ref,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type mismatchResponse struct {
	Location    string `json:"location"`
	AgentID     string `json:"agent_id,omitempty"`
	ProductID   string `json:"product_id"`
	Quantity    int64  `json:"quantity"`
	MovementSum int64  `json:"movement_sum"`
}

type reconciliationResponse struct {
	Checked    int                `json:"checked"`
	Consistent bool               `json:"consistent"`
	Mismatches []mismatchResponse `json:"mismatches"`
}

// Settings

type updateSettingRequest struct {
	Value string `json:"value" validate:"max=4000"`
}
