// Package transferrepo persists dual-confirmation transfer requests. Lines are
// embedded in the request row as a JSON array.
package transferrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"

	"github.com/google/uuid"
)

// RequestDTO is one row of transfer_requests.
type RequestDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind         string    `gorm:"type:varchar(16);not null;index"`
	AgentID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Initiator    PartyDTO  `gorm:"embedded;embeddedPrefix:initiator_"`
	Counterparty PartyDTO  `gorm:"embedded;embeddedPrefix:counterparty_"`
	Lines        string    `gorm:"type:jsonb;not null"`
	Note         string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	ExpiredAt    *time.Time
}

func (RequestDTO) TableName() string {
	return "transfer_requests"
}

// PartyDTO holds one confirming party. CodeHash is a bcrypt hash.
type PartyDTO struct {
	ActorID     uuid.UUID `gorm:"type:uuid;not null;index"`
	CodeHash    string    `gorm:"type:varchar(72);not null"`
	ConfirmedAt *time.Time
}

// LineDTO is the JSON shape of one embedded line.
type LineDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

func partyFromDomain(p transfer.Party) PartyDTO {
	return PartyDTO{
		ActorID:     p.ActorID().Bytes(),
		CodeHash:    p.CodeHash(),
		ConfirmedAt: p.ConfirmedAt(),
	}
}

func partyToDomain(dto PartyDTO) (transfer.Party, error) {
	actorID, err := kernel.UUIDFromBytes(dto.ActorID[:])
	if err != nil {
		return transfer.Party{}, err
	}
	return transfer.RestoreParty(actorID, dto.CodeHash, dto.ConfirmedAt), nil
}

func fromDomain(r *transfer.Request) (RequestDTO, error) {
	lines := make([]LineDTO, 0, len(r.Lines()))
	for _, l := range r.Lines() {
		lines = append(lines, LineDTO{ProductID: l.ProductID().String(), Quantity: l.Quantity()})
	}
	encoded, err := json.Marshal(lines)
	if err != nil {
		return RequestDTO{}, err
	}

	return RequestDTO{
		ID:           r.ID().Bytes(),
		Kind:         r.Kind().String(),
		AgentID:      r.AgentID().Bytes(),
		Initiator:    partyFromDomain(r.Initiator()),
		Counterparty: partyFromDomain(r.Counterparty()),
		Lines:        string(encoded),
		Note:         r.Note(),
		CreatedAt:    r.CreatedAt(),
		ExpiresAt:    r.ExpiresAt(),
		CompletedAt:  r.CompletedAt(),
		CancelledAt:  r.CancelledAt(),
		ExpiredAt:    r.ExpiredAt(),
	}, nil
}

// DecodeLines parses the embedded JSON line array.
func DecodeLines(raw string) ([]transfer.Line, error) {
	var dtos []LineDTO
	if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
		return nil, err
	}

	lines := make([]transfer.Line, 0, len(dtos))
	for _, dto := range dtos {
		productID, err := kernel.UUIDFromString(dto.ProductID)
		if err != nil {
			return nil, err
		}
		line, err := transfer.NewLine(productID, dto.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func toDomain(dto RequestDTO) (*transfer.Request, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
	if err != nil {
		return nil, err
	}
	initiator, err := partyToDomain(dto.Initiator)
	if err != nil {
		return nil, err
	}
	counterparty, err := partyToDomain(dto.Counterparty)
	if err != nil {
		return nil, err
	}
	lines, err := DecodeLines(dto.Lines)
	if err != nil {
		return nil, err
	}

	return transfer.RestoreRequest(id, transfer.Kind(dto.Kind), agentID, initiator, counterparty, lines, dto.Note,
		dto.CreatedAt, dto.ExpiresAt, dto.CompletedAt, dto.CancelledAt, dto.ExpiredAt)
}
