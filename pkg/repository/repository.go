// Package repository declares the persistence contracts the engine
// depends on. Implementations live under infra/repository; services only
// ever see these interfaces through a UnitOfWork.
package repository

import (
	"context"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
)

// TransactionRepository owns the staging table of authorization records.
type TransactionRepository interface {
	// BatchInsert stores one file's records in a single operation. All
	// rows land with status PENDING.
	BatchInsert(ctx context.Context, records []dto.StagedTransaction) error
	// ListByStatus returns the staged records of a family in the given
	// status, oldest transaction date first.
	ListByStatus(ctx context.Context, family domain.Family, status domain.Status) ([]dto.StagedTransaction, error)
	// Get returns one staged record by id.
	Get(ctx context.Context, id int64) (*dto.StagedTransaction, error)
	// UpdateStatus moves the given records to a new status.
	UpdateStatus(ctx context.Context, ids []int64, status domain.Status) error
	// SetEnrichment caches the looked-up display fields on every staged
	// record sharing the coupon.
	SetEnrichment(ctx context.Context, coupon, customerName, documentType string) error
	// SendableByDate returns the records of a family on one transaction
	// date whose status permits the accounting close.
	SendableByDate(ctx context.Context, family domain.Family, date string) ([]dto.StagedTransaction, error)
	// UnresolvedDatesBefore returns, newest first, the transaction dates
	// of a family earlier than the given date that still hold records in
	// any non-PROCESSED state.
	UnresolvedDatesBefore(ctx context.Context, family domain.Family, date string) ([]string, error)
	// DeleteByIDs removes records from staging. Only the lifecycle
	// manager calls this, inside the move-to-history transaction.
	DeleteByIDs(ctx context.Context, ids []int64) error
	// StatusSummary counts staged records per (date, status) bucket for
	// a family.
	StatusSummary(ctx context.Context, family domain.Family) ([]dto.StatusCount, error)
}

// HistoryRepository owns the per-family historical transaction tables.
type HistoryRepository interface {
	BatchInsert(ctx context.Context, records []dto.HistoricalTransaction) error
	// Candidates returns the historical records of a family whose coupon
	// is one of the given canonical values. The matcher narrows them by
	// date and amount.
	Candidates(ctx context.Context, family domain.Family, coupons []string) ([]dto.HistoricalTransaction, error)
}

// LiquidationRepository owns the settlement staging and history tables.
type LiquidationRepository interface {
	BatchInsert(ctx context.Context, records []dto.StagedLiquidation) error
	// ListByFamily returns staged settlement lines of one family,
	// optionally restricted to one source file.
	ListByFamily(ctx context.Context, family domain.Family, sourceFile string) ([]dto.StagedLiquidation, error)
	// MoveToHistory copies the given staged lines into the historical
	// settlement table and deletes them from staging.
	MoveToHistory(ctx context.Context, ids []int64, actor string) error
}

// CouponRepository owns the coupon resolution master.
type CouponRepository interface {
	// InsertIfAbsent merges resolutions under first-writer-wins
	// semantics on the (coupon, transaction date) key and reports how
	// many rows were new.
	InsertIfAbsent(ctx context.Context, resolutions []dto.CouponResolution) (int, error)
	// ListUnenriched returns resolutions that never received a lookup
	// payload, capped at limit.
	ListUnenriched(ctx context.Context, limit int) ([]dto.CouponResolution, error)
	// SetEnrichment stores the lookup outcome for one key. It never
	// clears an existing payload.
	SetEnrichment(ctx context.Context, coupon, date, displayName, payload string) error
}

// IngestLogRepository owns the per-file ingestion journal.
type IngestLogRepository interface {
	// Processed reports whether the logical name already has a
	// successful entry.
	Processed(ctx context.Context, logicalName string) (bool, error)
	Record(ctx context.Context, entry dto.IngestLogEntry) error
}

// AuditRepository owns the append-only accounting close journal.
type AuditRepository interface {
	Append(ctx context.Context, entry dto.AuditLogEntry) error
	// DailyTotal returns the amount already closed for a family on one
	// calendar day, for the running total carried on each entry.
	DailyTotal(ctx context.Context, family domain.Family, batchDate string) (int64, error)
}

// UnitOfWork is the transaction boundary of the engine. Do runs fn
// inside one store transaction; every repository handed out by the
// receiver inside fn is bound to that transaction, so a returned error
// rolls back everything fn wrote.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Transactions() TransactionRepository
	History() HistoryRepository
	Liquidations() LiquidationRepository
	Coupons() CouponRepository
	IngestLog() IngestLogRepository
	Audit() AuditRepository
}
