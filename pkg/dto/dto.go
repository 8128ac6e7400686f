// Package dto carries the flat records exchanged between the services
// and the persistence layer. Dates stay in their source encodings; the
// matcher owns normalization.
package dto

import (
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
)

// StagedTransaction is one authorization record in the reconciliation
// staging table, either family. Pointer fields reflect numeric columns
// that decoded to absent.
type StagedTransaction struct {
	ID               int64
	Family           domain.Family
	Coupon           string
	UniqueNumber     string
	ApprovalCode     string
	TransactionDate  string // RRMMDD
	TransactionTime  string
	SaleDate         string // RRMMDD
	Amount           *int64
	InstallmentCount *int64
	RetailerID       *int64
	RetailerName     string
	CardNumber       string
	TerminalName     string
	RegisterID       string
	ReceiptNumber    string
	Status           domain.Status
	CustomerName     string
	DocumentType     string
	SourceFile       string
	LoadedAt         time.Time
}

// HistoricalTransaction is one authorization record after the accounting
// close moved it out of staging. Append-only.
type HistoricalTransaction struct {
	ID              int64
	Family          domain.Family
	Coupon          string
	UniqueNumber    string
	ApprovalCode    string
	TransactionDate string // RRMMDD
	Amount          *int64
	RetailerID      *int64
	CardNumber      string
	CustomerName    string
	DocumentType    string
	SourceFile      string
	ProcessedAt     time.Time
}

// StagedLiquidation is one settlement line awaiting operator validation,
// either family. Amortization figures are never stored here; they are
// recomputed from the installment columns on every read.
type StagedLiquidation struct {
	ID                int64
	Family            domain.Family
	CommerceNumber    string
	PrincipalCommerce *int64
	SaleDate          string // DDMMYYYY credit, DDMMRR debit
	PaymentDate       string // DDMMYYYY credit, DD/MM/RR debit
	UniqueNumber      string
	AuthorizationCode string
	Amount            *int64
	Installment       *int64
	TotalInstallments *int64
	Withheld          string
	CardNumber        string
	Brand             string
	BankName          string
	BankAccountNumber string
	SourceFile        string
	LoadedAt          time.Time
}

// HistoricalLiquidation is a settlement line after operator validation
// moved it out of staging.
type HistoricalLiquidation struct {
	ID                int64
	Family            domain.Family
	CommerceNumber    string
	SaleDate          string
	PaymentDate       string
	UniqueNumber      string
	AuthorizationCode string
	Amount            *int64
	Installment       *int64
	TotalInstallments *int64
	SourceFile        string
	ProcessedAt       time.Time
}

// CouponResolution is one row of the coupon master keyed by
// (coupon, transaction date). First writer wins; rows are enriched in
// place but never replaced.
type CouponResolution struct {
	Coupon          string
	TransactionDate string // RRMMDD
	CustomerID      string
	DisplayName     string
	Enrichment      string // raw lookup payload, opaque to the engine
	CreatedAt       time.Time
}

// IngestLogEntry records the outcome of one file in one ingestion run.
// The logical name, archive suffix stripped, is the idempotency key.
type IngestLogEntry struct {
	ID          int64
	RunID       string
	LogicalName string
	FileType    domain.FileType
	State       string // processed, omitted, failed
	Inserted    int
	Detail      string
	LoadedAt    time.Time
}

// Ingest log states.
const (
	IngestProcessed = "processed"
	IngestOmitted   = "omitted"
	IngestFailed    = "failed"
)

// AuditLogEntry records one accounting close batch.
type AuditLogEntry struct {
	ID         int64
	Actor      string
	Family     domain.Family
	BatchDate  string // RRMMDD of the records sent
	Records    int
	DailyTotal int64
	SentAt     time.Time
}

// StatusCount is one bucket of the daily status summary.
type StatusCount struct {
	Date   string // RRMMDD
	Status domain.Status
	Count  int64
}

// CommerceTotal is one merchant line of the settlement statement.
type CommerceTotal struct {
	CommerceCode    string
	Records         int64
	Amount          int64
	CommissionCents int64
	GrossCents      int64
}
