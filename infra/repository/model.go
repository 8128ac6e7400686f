package repository

import (
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
)

// StagedTransaction is the staging row for authorization records of both
// families.
type StagedTransaction struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	Family           string `gorm:"size:8;index:idx_staged_family_status"`
	Coupon           string `gorm:"size:32;index"`
	UniqueNumber     string `gorm:"size:32"`
	ApprovalCode     string `gorm:"size:16"`
	TransactionDate  string `gorm:"size:8;index"`
	TransactionTime  string `gorm:"size:8"`
	SaleDate         string `gorm:"size:8"`
	Amount           *int64
	InstallmentCount *int64
	RetailerID       *int64
	RetailerName     string `gorm:"size:32"`
	CardNumber       string `gorm:"size:24"`
	TerminalName     string `gorm:"size:24"`
	RegisterID       string `gorm:"size:24"`
	ReceiptNumber    string `gorm:"size:16"`
	Status           string `gorm:"size:12;index:idx_staged_family_status"`
	CustomerName     string `gorm:"size:64"`
	DocumentType     string `gorm:"size:16"`
	SourceFile       string `gorm:"size:128"`
	LoadedAt         time.Time
}

// TableName implements gorm's table naming.
func (StagedTransaction) TableName() string { return "staged_transactions" }

// HistoricalTransaction is the row shape shared by the per-family
// historical tables; the concrete table is chosen by family at query
// time.
type HistoricalTransaction struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	Coupon          string `gorm:"size:32;index"`
	UniqueNumber    string `gorm:"size:32"`
	ApprovalCode    string `gorm:"size:16"`
	TransactionDate string `gorm:"size:8;index"`
	Amount          *int64
	RetailerID      *int64
	CardNumber      string `gorm:"size:24"`
	CustomerName    string `gorm:"size:64"`
	DocumentType    string `gorm:"size:16"`
	SourceFile      string `gorm:"size:128"`
	ProcessedAt     time.Time
}

// historyTable routes a family to its historical table.
func historyTable(f domain.Family) string {
	if f == domain.FamilyDebit {
		return "historical_transactions_debit"
	}
	return "historical_transactions_credit"
}

// StagedLiquidation is the staging row for settlement lines of both
// families.
type StagedLiquidation struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Family            string `gorm:"size:8;index"`
	CommerceNumber    string `gorm:"size:16;index"`
	PrincipalCommerce *int64
	SaleDate          string `gorm:"size:8"`
	PaymentDate       string `gorm:"size:8"`
	UniqueNumber      string `gorm:"size:32;index"`
	AuthorizationCode string `gorm:"size:16"`
	Amount            *int64
	Installment       *int64
	TotalInstallments *int64
	Withheld          string `gorm:"size:8"`
	CardNumber        string `gorm:"size:24"`
	Brand             string `gorm:"size:4"`
	BankName          string `gorm:"size:40"`
	BankAccountNumber string `gorm:"size:24"`
	SourceFile        string `gorm:"size:128"`
	LoadedAt          time.Time
}

// TableName implements gorm's table naming.
func (StagedLiquidation) TableName() string { return "staged_liquidations" }

// HistoricalLiquidation is a validated settlement line moved out of
// staging.
type HistoricalLiquidation struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	Family            string `gorm:"size:8;index"`
	CommerceNumber    string `gorm:"size:16"`
	SaleDate          string `gorm:"size:8"`
	PaymentDate       string `gorm:"size:8"`
	UniqueNumber      string `gorm:"size:32"`
	AuthorizationCode string `gorm:"size:16"`
	Amount            *int64
	Installment       *int64
	TotalInstallments *int64
	SourceFile        string `gorm:"size:128"`
	ValidatedBy       string `gorm:"size:32"`
	ProcessedAt       time.Time
}

// TableName implements gorm's table naming.
func (HistoricalLiquidation) TableName() string { return "historical_liquidations" }

// CouponResolution is the coupon master row.
type CouponResolution struct {
	Coupon          string `gorm:"primaryKey;size:32"`
	TransactionDate string `gorm:"primaryKey;size:8"`
	CustomerID      string `gorm:"size:32"`
	DisplayName     string `gorm:"size:64"`
	Enrichment      string
	CreatedAt       time.Time
}

// TableName implements gorm's table naming.
func (CouponResolution) TableName() string { return "coupon_resolutions" }

// IngestLogEntry journals one file outcome per ingestion run.
type IngestLogEntry struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	RunID       string `gorm:"size:36;index"`
	LogicalName string `gorm:"size:128;index"`
	FileType    string `gorm:"size:4"`
	State       string `gorm:"size:12"`
	Inserted    int
	Detail      string
	LoadedAt    time.Time
}

// TableName implements gorm's table naming.
func (IngestLogEntry) TableName() string { return "ingest_log" }

// AuditLogEntry journals one accounting close.
type AuditLogEntry struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Actor      string `gorm:"size:32"`
	Family     string `gorm:"size:8;index"`
	BatchDate  string `gorm:"size:8;index"`
	Records    int
	DailyTotal int64
	SentAt     time.Time
}

// TableName implements gorm's table naming.
func (AuditLogEntry) TableName() string { return "audit_log" }

func stagedTransactionToModel(d dto.StagedTransaction) StagedTransaction {
	return StagedTransaction{
		ID:               d.ID,
		Family:           string(d.Family),
		Coupon:           d.Coupon,
		UniqueNumber:     d.UniqueNumber,
		ApprovalCode:     d.ApprovalCode,
		TransactionDate:  d.TransactionDate,
		TransactionTime:  d.TransactionTime,
		SaleDate:         d.SaleDate,
		Amount:           d.Amount,
		InstallmentCount: d.InstallmentCount,
		RetailerID:       d.RetailerID,
		RetailerName:     d.RetailerName,
		CardNumber:       d.CardNumber,
		TerminalName:     d.TerminalName,
		RegisterID:       d.RegisterID,
		ReceiptNumber:    d.ReceiptNumber,
		Status:           string(d.Status),
		CustomerName:     d.CustomerName,
		DocumentType:     d.DocumentType,
		SourceFile:       d.SourceFile,
		LoadedAt:         d.LoadedAt,
	}
}

func stagedTransactionToDTO(m StagedTransaction) dto.StagedTransaction {
	return dto.StagedTransaction{
		ID:               m.ID,
		Family:           domain.Family(m.Family),
		Coupon:           m.Coupon,
		UniqueNumber:     m.UniqueNumber,
		ApprovalCode:     m.ApprovalCode,
		TransactionDate:  m.TransactionDate,
		TransactionTime:  m.TransactionTime,
		SaleDate:         m.SaleDate,
		Amount:           m.Amount,
		InstallmentCount: m.InstallmentCount,
		RetailerID:       m.RetailerID,
		RetailerName:     m.RetailerName,
		CardNumber:       m.CardNumber,
		TerminalName:     m.TerminalName,
		RegisterID:       m.RegisterID,
		ReceiptNumber:    m.ReceiptNumber,
		Status:           domain.Status(m.Status),
		CustomerName:     m.CustomerName,
		DocumentType:     m.DocumentType,
		SourceFile:       m.SourceFile,
		LoadedAt:         m.LoadedAt,
	}
}

func historicalToModel(d dto.HistoricalTransaction) HistoricalTransaction {
	return HistoricalTransaction{
		ID:              d.ID,
		Coupon:          d.Coupon,
		UniqueNumber:    d.UniqueNumber,
		ApprovalCode:    d.ApprovalCode,
		TransactionDate: d.TransactionDate,
		Amount:          d.Amount,
		RetailerID:      d.RetailerID,
		CardNumber:      d.CardNumber,
		CustomerName:    d.CustomerName,
		DocumentType:    d.DocumentType,
		SourceFile:      d.SourceFile,
		ProcessedAt:     d.ProcessedAt,
	}
}

func historicalToDTO(m HistoricalTransaction, f domain.Family) dto.HistoricalTransaction {
	return dto.HistoricalTransaction{
		ID:              m.ID,
		Family:          f,
		Coupon:          m.Coupon,
		UniqueNumber:    m.UniqueNumber,
		ApprovalCode:    m.ApprovalCode,
		TransactionDate: m.TransactionDate,
		Amount:          m.Amount,
		RetailerID:      m.RetailerID,
		CardNumber:      m.CardNumber,
		CustomerName:    m.CustomerName,
		DocumentType:    m.DocumentType,
		SourceFile:      m.SourceFile,
		ProcessedAt:     m.ProcessedAt,
	}
}

func stagedLiquidationToModel(d dto.StagedLiquidation) StagedLiquidation {
	return StagedLiquidation{
		ID:                d.ID,
		Family:            string(d.Family),
		CommerceNumber:    d.CommerceNumber,
		PrincipalCommerce: d.PrincipalCommerce,
		SaleDate:          d.SaleDate,
		PaymentDate:       d.PaymentDate,
		UniqueNumber:      d.UniqueNumber,
		AuthorizationCode: d.AuthorizationCode,
		Amount:            d.Amount,
		Installment:       d.Installment,
		TotalInstallments: d.TotalInstallments,
		Withheld:          d.Withheld,
		CardNumber:        d.CardNumber,
		Brand:             d.Brand,
		BankName:          d.BankName,
		BankAccountNumber: d.BankAccountNumber,
		SourceFile:        d.SourceFile,
		LoadedAt:          d.LoadedAt,
	}
}

func stagedLiquidationToDTO(m StagedLiquidation) dto.StagedLiquidation {
	return dto.StagedLiquidation{
		ID:                m.ID,
		Family:            domain.Family(m.Family),
		CommerceNumber:    m.CommerceNumber,
		PrincipalCommerce: m.PrincipalCommerce,
		SaleDate:          m.SaleDate,
		PaymentDate:       m.PaymentDate,
		UniqueNumber:      m.UniqueNumber,
		AuthorizationCode: m.AuthorizationCode,
		Amount:            m.Amount,
		Installment:       m.Installment,
		TotalInstallments: m.TotalInstallments,
		Withheld:          m.Withheld,
		CardNumber:        m.CardNumber,
		Brand:             m.Brand,
		BankName:          m.BankName,
		BankAccountNumber: m.BankAccountNumber,
		SourceFile:        m.SourceFile,
		LoadedAt:          m.LoadedAt,
	}
}
