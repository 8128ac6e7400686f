// Package debt computes installment amortization for settled sales.
// Nothing here is persisted; every read derives the figures again from
// the stored settlement line.
package debt

import (
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
)

// Rounding drift from integer installment division is absorbed rather
// than reported as residual debt.
const (
	roundingTolerance     = 1
	asOfRoundingTolerance = 5
)

// FullSettlementMark is the reserved value of the withheld column that
// flags a single-payment settlement regardless of the installment
// columns.
const FullSettlementMark = "0000"

// Terms are the installment terms of one settlement line. Amount is the
// per-installment amount in cents. TotalSale, when set, is the matched
// historical gross; when nil the total falls back to
// Amount x TotalInstallments.
type Terms struct {
	Family            domain.Family
	Amount            int64
	Installment       *int64
	TotalInstallments *int64
	FullSettlement    bool
	TotalSale         *int64
}

// Schedule is the derived amortization state of one settlement line.
type Schedule struct {
	Installment       int64
	TotalInstallments int64
	TotalSale         int64
	PaidToDate        int64
	Outstanding       int64
}

func clamp(v, tolerance int64) int64 {
	if v >= -tolerance && v <= tolerance {
		return 0
	}
	return v
}

func orOne(v *int64) int64 {
	if v == nil || *v == 0 {
		return 1
	}
	return *v
}

// Amortize derives the amortization schedule of one settlement line.
// A full-settlement mark or an absent or zero installment total collapses
// the terms to a single-installment sale; null never propagates.
func Amortize(t Terms) Schedule {
	current := orOne(t.Installment)
	total := orOne(t.TotalInstallments)
	if t.FullSettlement {
		current, total = 1, 1
	}

	totalSale := t.Amount * total
	if t.TotalSale != nil {
		totalSale = *t.TotalSale
	}
	paid := current * t.Amount

	return Schedule{
		Installment:       current,
		TotalInstallments: total,
		TotalSale:         totalSale,
		PaidToDate:        paid,
		Outstanding:       clamp(totalSale-paid, roundingTolerance),
	}
}

// Pending classifies one installment against a cutoff date for the
// pending-balance report and returns the amount still owed on it. An
// installment whose payment date is strictly after the cutoff, or never
// decoded, is still owed in full: the per-installment amount for credit,
// the whole sale for debit. A paid installment owes nothing.
func Pending(t Terms, paymentDay time.Time, paymentDayOK bool, cutoff time.Time) int64 {
	if !paymentDayOK || paymentDay.After(cutoff) {
		if t.Family == domain.FamilyDebit {
			return Amortize(t).TotalSale
		}
		return t.Amount
	}
	return 0
}

// ClampAsOf absorbs rounding drift on an aggregated as-of balance. The
// pending-balance report sums per-installment figures that were produced
// by integer division, so its tolerance is wider than the per-line one.
func ClampAsOf(v int64) int64 {
	return clamp(v, asOfRoundingTolerance)
}
