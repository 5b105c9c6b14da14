package stockrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/stock"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements ports.StockRepository using GORM.
type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// Get reads a level without locking. A missing row reads as an empty level.
func (r *GormStockRepository) Get(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
) (*stock.Level, error) {
	var dto LevelDTO
	err := r.keyed(r.db.WithContext(ctx), location, productID).Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stock.NewLevel(location, productID)
	}
	if err != nil {
		return nil, err
	}
	return levelToDomain(dto)
}

// GetForUpdate inserts the row at zero when missing, then takes SELECT ... FOR
// UPDATE on it. Two callers racing on a missing row both end up waiting on the
// same lock.
func (r *GormStockRepository) GetForUpdate(
	ctx context.Context,
	location kernel.StockLocation,
	productID kernel.UUID,
) (*stock.Level, error) {
	if err := errors.Join(location.Validate(), productID.Validate()); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	seed := LevelDTO{
		LocationKind:    string(location.Kind()),
		LocationAgentID: location.AgentID().Bytes(),
		ProductID:       productID.Bytes(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, err
	}

	var dto LevelDTO
	if err := r.keyed(db.Clauses(clause.Locking{Strength: "UPDATE"}), location, productID).
		Take(&dto).Error; err != nil {
		return nil, err
	}
	return levelToDomain(dto)
}

// Save writes quantity and updated_at of a level locked by GetForUpdate.
func (r *GormStockRepository) Save(ctx context.Context, level *stock.Level) error {
	if err := level.Validate(); err != nil {
		return err
	}

	result := r.keyed(r.db.WithContext(ctx).Model(&LevelDTO{}), level.Location(), level.ProductID()).
		Updates(map[string]any{
			"quantity":   level.Quantity(),
			"updated_at": level.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("stock level", level.Location().String()+"/"+level.ProductID().String())
	}
	return nil
}

func (r *GormStockRepository) keyed(db *gorm.DB, location kernel.StockLocation, productID kernel.UUID) *gorm.DB {
	return db.Where("location_kind = ? AND location_agent_id = ? AND product_id = ?",
		string(location.Kind()), location.AgentID().Bytes(), productID.Bytes())
}

// GormMovementRepository implements ports.MovementRepository.
type GormMovementRepository struct {
	db *gorm.DB
}

func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts one movement row.
func (r *GormMovementRepository) Append(ctx context.Context, movement *stock.Movement) error {
	if err := movement.Validate(); err != nil {
		return err
	}
	dto := movementFromDomain(movement)
	return r.db.WithContext(ctx).Create(&dto).Error
}
