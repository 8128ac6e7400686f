// Package domain holds the shared vocabulary of the reconciliation engine:
// record families, file types, the per-record reconciliation status machine,
// and the sentinel errors used across layers.
package domain

// Family distinguishes the two card rails the acquirer settles.
type Family string

const (
	FamilyCredit Family = "CREDIT"
	FamilyDebit  Family = "DEBIT"
)

// FileType identifies one of the four fixed-width record families.
// CCN/CDN carry original authorization events; LCN/LDN carry the
// settlement (liquidation) lines reported by the acquirer.
type FileType string

const (
	FileCreditTransaction FileType = "CCN"
	FileDebitTransaction  FileType = "CDN"
	FileCreditLiquidation FileType = "LCN"
	FileDebitLiquidation  FileType = "LDN"
)

// Family maps a file type to its card rail.
func (t FileType) Family() Family {
	switch t {
	case FileCreditTransaction, FileCreditLiquidation:
		return FamilyCredit
	default:
		return FamilyDebit
	}
}

// IsLiquidation reports whether the file carries settlement lines
// rather than authorization events.
func (t FileType) IsLiquidation() bool {
	return t == FileCreditLiquidation || t == FileDebitLiquidation
}

// Valid reports whether t is one of the four known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileCreditTransaction, FileDebitTransaction,
		FileCreditLiquidation, FileDebitLiquidation:
		return true
	}
	return false
}

// TransactionFileFor returns the authorization file type of a family.
func TransactionFileFor(f Family) FileType {
	if f == FamilyCredit {
		return FileCreditTransaction
	}
	return FileDebitTransaction
}

// LiquidationFileFor returns the settlement file type of a family.
func LiquidationFileFor(f Family) FileType {
	if f == FamilyCredit {
		return FileCreditLiquidation
	}
	return FileDebitLiquidation
}

// Status is the reconciliation state of one staged transaction record.
//
// Pending is the initial state assigned on insert. Found/NotFound are
// terminal for matching but not for the record lifecycle; Reprocess marks
// a record an operator sent back through the matcher. Only Processed
// records may be moved to the historical tables.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusFound     Status = "FOUND"
	StatusNotFound  Status = "NOT_FOUND"
	StatusReprocess Status = "REPROCESS"
	StatusProcessed Status = "PROCESSED"
)

// Sendable reports whether a record in this status may be included in a
// "send to accounting" batch.
func (s Status) Sendable() bool {
	return s == StatusFound || s == StatusReprocess
}

// Unresolved reports whether a record in this status blocks later dates
// from being sent to accounting.
func (s Status) Unresolved() bool {
	switch s {
	case StatusFound, StatusNotFound, StatusReprocess, StatusPending:
		return true
	}
	return false
}
