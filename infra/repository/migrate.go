package repository

import (
	"gorm.io/gorm"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Migrate creates or updates the engine's tables. The historical
// transaction schema is applied once per family table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&StagedTransaction{},
		&StagedLiquidation{},
		&HistoricalLiquidation{},
		&CouponResolution{},
		&IngestLogEntry{},
		&AuditLogEntry{},
	); err != nil {
		return err
	}
	for _, family := range []domain.Family{domain.FamilyCredit, domain.FamilyDebit} {
		if err := db.Table(historyTable(family)).AutoMigrate(&HistoricalTransaction{}); err != nil {
			return err
		}
	}
	return nil
}
