package ingest

import (
	"strconv"
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/parser"
)

// stagedTransaction maps a parsed authorization record into its staging
// row. The canonical coupon is derived here so every later pass reads it
// instead of re-deriving.
func stagedTransaction(rec parser.Record, sourceFile string, now time.Time) (dto.StagedTransaction, bool) {
	switch r := rec.(type) {
	case *parser.CreditTransaction:
		coupon, _ := match.CanonicalCoupon(r.UniqueNumber, r.ApprovalCode)
		return dto.StagedTransaction{
			Family:           domain.FamilyCredit,
			Coupon:           coupon,
			UniqueNumber:     r.UniqueNumber,
			ApprovalCode:     r.ApprovalCode,
			TransactionDate:  r.TransactionDate,
			TransactionTime:  r.TransactionTime,
			SaleDate:         r.SaleDate,
			Amount:           r.Amount,
			InstallmentCount: r.InstallmentCount,
			RetailerID:       r.RetailerID,
			RetailerName:     r.RetailerName,
			CardNumber:       r.CardNumber,
			TerminalName:     r.TerminalName,
			RegisterID:       r.RegisterID,
			ReceiptNumber:    r.ReceiptNumber,
			Status:           domain.StatusPending,
			SourceFile:       sourceFile,
			LoadedAt:         now,
		}, true
	case *parser.DebitTransaction:
		coupon, _ := match.CanonicalCoupon(r.UniqueNumber, r.ApprovalCode)
		return dto.StagedTransaction{
			Family:          domain.FamilyDebit,
			Coupon:          coupon,
			UniqueNumber:    r.UniqueNumber,
			ApprovalCode:    r.ApprovalCode,
			TransactionDate: r.TransactionDate,
			TransactionTime: r.TransactionTime,
			Amount:          r.Amount,
			RetailerID:      r.RetailerID,
			RetailerName:    r.RetailerName,
			CardNumber:      r.CardNumber,
			TerminalName:    r.TerminalName,
			RegisterID:      r.RegisterID,
			ReceiptNumber:   r.ReceiptNumber,
			Status:          domain.StatusPending,
			SourceFile:      sourceFile,
			LoadedAt:        now,
		}, true
	}
	return dto.StagedTransaction{}, false
}

func formatCommerce(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// stagedLiquidation maps a parsed settlement line into its staging row.
func stagedLiquidation(rec parser.Record, sourceFile string, now time.Time) (dto.StagedLiquidation, bool) {
	switch r := rec.(type) {
	case *parser.CreditLiquidation:
		return dto.StagedLiquidation{
			Family:            domain.FamilyCredit,
			CommerceNumber:    formatCommerce(r.CommerceNumber),
			PrincipalCommerce: r.PrincipalCommerce,
			SaleDate:          r.SaleDate,
			PaymentDate:       r.PaymentDate,
			UniqueNumber:      r.OrderNumber,
			AuthorizationCode: r.AuthorizationCode,
			Amount:            r.Amount,
			Installment:       r.Installment,
			TotalInstallments: r.TotalInstallments,
			Withheld:          r.Withheld,
			CardNumber:        r.CardNumber,
			Brand:             r.Brand,
			BankName:          r.BankName,
			BankAccountNumber: r.BankAccountNumber,
			SourceFile:        sourceFile,
			LoadedAt:          now,
		}, true
	case *parser.DebitLiquidation:
		return dto.StagedLiquidation{
			Family:            domain.FamilyDebit,
			CommerceNumber:    formatCommerce(r.CommerceNumber),
			SaleDate:          r.SaleDate,
			PaymentDate:       r.PaymentDate,
			UniqueNumber:      r.UniqueNumber,
			AuthorizationCode: r.ApprovalCode,
			Amount:            r.Amount,
			CardNumber:        r.CardNumber,
			Brand:             r.Brand,
			BankName:          r.BankName,
			BankAccountNumber: r.BankAccountNumber,
			SourceFile:        sourceFile,
			LoadedAt:          now,
		}, true
	}
	return dto.StagedLiquidation{}, false
}
