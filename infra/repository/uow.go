package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/acquirex/reconcile/pkg/repository"
)

// UoW binds the repository set to one GORM session. Inside Do every
// accessor hands out repositories on the open transaction, so an error
// from the callback rolls back everything it wrote.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work over the given connection.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

func (u *UoW) session() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

// Do runs fn inside one store transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return u.session().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) Transactions() repository.TransactionRepository {
	return NewTransactionRepository(u.session())
}

func (u *UoW) History() repository.HistoryRepository {
	return NewHistoryRepository(u.session())
}

func (u *UoW) Liquidations() repository.LiquidationRepository {
	return NewLiquidationRepository(u.session())
}

func (u *UoW) Coupons() repository.CouponRepository {
	return NewCouponRepository(u.session())
}

func (u *UoW) IngestLog() repository.IngestLogRepository {
	return NewIngestLogRepository(u.session())
}

func (u *UoW) Audit() repository.AuditRepository {
	return NewAuditRepository(u.session())
}
