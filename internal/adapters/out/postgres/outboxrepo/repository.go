// Package outboxrepo stores integration events written in the same transaction
// as the change they announce.
package outboxrepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageDTO is one row of outbox_messages.
type MessageDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Topic     string     `gorm:"type:varchar(128);not null"`
	Key       string     `gorm:"type:varchar(128)"`
	Payload   string     `gorm:"type:jsonb;not null"`
	CreatedAt time.Time  `gorm:"not null;index"`
	SentAt    *time.Time `gorm:"index"`
	Retries   int        `gorm:"not null;default:0;index"`
}

func (MessageDTO) TableName() string {
	return "outbox_messages"
}

func fromDomain(m *outbox.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID().Bytes(),
		Topic:     m.Topic(),
		Key:       m.Key(),
		Payload:   string(m.Payload()),
		CreatedAt: m.CreatedAt(),
		SentAt:    m.SentAt(),
		Retries:   m.Retries(),
	}
}

func toDomain(dto MessageDTO) (*outbox.Message, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return outbox.RestoreMessage(id, dto.Topic, dto.Key, []byte(dto.Payload), dto.CreatedAt, dto.SentAt, dto.Retries)
}

// GormOutboxRepository implements ports.OutboxRepository.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	dto := fromDomain(message)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListPending locks up to limit unsent messages, fewest retries first and
// then oldest first, so messages that keep failing cannot starve the rest.
// Rows held by a concurrent relay are skipped.
func (r *GormOutboxRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("sent_at IS NULL").
		Order("retries, created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		m, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *GormOutboxRepository) MarkSent(ctx context.Context, id kernel.UUID, sentAt time.Time) error {
	return r.update(ctx, id, map[string]any{"sent_at": sentAt})
}

func (r *GormOutboxRepository) IncrementRetries(ctx context.Context, id kernel.UUID) error {
	return r.update(ctx, id, map[string]any{"retries": gorm.Expr("retries + 1")})
}

func (r *GormOutboxRepository) update(ctx context.Context, id kernel.UUID, values map[string]any) error {
	result := r.db.WithContext(ctx).Model(&MessageDTO{}).Where("id = ?", id.Bytes()).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", id.String())
	}
	return nil
}
