// Package invoicerepo reads the invoices table owned by the accounting side.
// This service never writes to it.
package invoicerepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceDTO maps the columns of invoices this service reads.
type InvoiceDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Number    string    `gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (InvoiceDTO) TableName() string {
	return "invoices"
}

// GormInvoiceLookup implements ports.InvoiceLookup.
type GormInvoiceLookup struct {
	db *gorm.DB
}

func NewGormInvoiceLookup(db *gorm.DB) *GormInvoiceLookup {
	return &GormInvoiceLookup{db: db}
}

func (l *GormInvoiceLookup) ExistsForOrder(ctx context.Context, orderID kernel.UUID) (bool, error) {
	if err := orderID.Validate(); err != nil {
		return false, err
	}

	var count int64
	err := l.db.WithContext(ctx).Model(&InvoiceDTO{}).
		Where("order_id = ?", orderID.Bytes()).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
