package transferrepo

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/transfer"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityName = "transfer request"

// GormTransferRepository implements ports.TransferRepository using GORM.
type GormTransferRepository struct {
	db *gorm.DB
}

func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

func (r *GormTransferRepository) Add(ctx context.Context, request *transfer.Request) error {
	if err := request.Validate(); err != nil {
		return err
	}
	dto, err := fromDomain(request)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update rewrites the mutable columns: confirmations and the terminal stamps.
func (r *GormTransferRepository) Update(ctx context.Context, request *transfer.Request) error {
	if err := request.Validate(); err != nil {
		return err
	}
	dto, err := fromDomain(request)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&RequestDTO{}).Where("id = ?", dto.ID).
		Updates(map[string]any{
			"initiator_confirmed_at":    dto.Initiator.ConfirmedAt,
			"counterparty_confirmed_at": dto.Counterparty.ConfirmedAt,
			"completed_at":              dto.CompletedAt,
			"cancelled_at":              dto.CancelledAt,
			"expired_at":                dto.ExpiredAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError(entityName, request.ID().String())
	}
	return nil
}

func (r *GormTransferRepository) Get(ctx context.Context, id kernel.UUID) (*transfer.Request, error) {
	return r.load(r.db.WithContext(ctx), id)
}

// GetForUpdate holds SELECT ... FOR UPDATE on the request row.
func (r *GormTransferRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*transfer.Request, error) {
	return r.load(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// ListOverdue locks and returns open requests past their deadline. Requests
// both parties confirmed are left out: they wait for a completion retry, not
// for expiry. Rows locked by another sweeper are skipped.
func (r *GormTransferRepository) ListOverdue(
	ctx context.Context,
	now time.Time,
	limit int,
) ([]*transfer.Request, error) {
	var dtos []RequestDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("completed_at IS NULL AND cancelled_at IS NULL AND expired_at IS NULL").
		Where("expires_at <= ?", now).
		Where("initiator_confirmed_at IS NULL OR counterparty_confirmed_at IS NULL").
		Order("expires_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	requests := make([]*transfer.Request, 0, len(dtos))
	for _, dto := range dtos {
		req, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (r *GormTransferRepository) load(db *gorm.DB, id kernel.UUID) (*transfer.Request, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RequestDTO
	if err := db.Take(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(entityName, id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
