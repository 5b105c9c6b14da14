// Package counterrepo stores named sequences in the counters table.
package counterrepo

import (
	"context"
	"strings"

	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterDTO is one named sequence.
type CounterDTO struct {
	Name         string `gorm:"type:varchar(64);primaryKey"`
	CurrentValue int64  `gorm:"not null;default:0"`
}

func (CounterDTO) TableName() string {
	return "counters"
}

// GormCounterRepository implements ports.CounterRepository.
type GormCounterRepository struct {
	db *gorm.DB
}

func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// LockValue creates the counter at zero when missing and takes SELECT ... FOR
// UPDATE on its row. Concurrent callers queue on the lock until the holder's
// transaction ends.
func (r *GormCounterRepository) LockValue(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, errs.NewValueIsRequiredError("name")
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&CounterDTO{Name: name}).Error; err != nil {
		return 0, err
	}

	var dto CounterDTO
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Take(&dto, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return dto.CurrentValue, nil
}

func (r *GormCounterRepository) StoreValue(ctx context.Context, name string, value int64) error {
	result := r.db.WithContext(ctx).Model(&CounterDTO{}).Where("name = ?", name).
		Update("current_value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("counter", name)
	}
	return nil
}
