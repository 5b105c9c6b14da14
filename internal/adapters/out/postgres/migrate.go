package postgres

import (
	"fulfillment/internal/adapters/out/postgres/counterrepo"
	"fulfillment/internal/adapters/out/postgres/invoicerepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"
	"fulfillment/internal/adapters/out/postgres/settingsrepo"
	"fulfillment/internal/adapters/out/postgres/stockrepo"
	"fulfillment/internal/adapters/out/postgres/transferrepo"

	"gorm.io/gorm"
)

// Models lists every table the service maps. invoices is included so the
// lookup works against a fresh database; its rows are written by accounting.
func Models() []any {
	return []any{
		&stockrepo.LevelDTO{},
		&stockrepo.MovementDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.LineDTO{},
		&orderrepo.ActionLogDTO{},
		&transferrepo.RequestDTO{},
		&counterrepo.CounterDTO{},
		&outboxrepo.MessageDTO{},
		&settingsrepo.SettingDTO{},
		&invoicerepo.InvoiceDTO{},
	}
}

// Migrate creates or updates the schema. Non-negative quantities are enforced
// by the stock ledger alone; the schema carries no CHECK constraint or
// trigger for them.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
