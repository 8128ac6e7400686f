package debt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/acquirex/reconcile/pkg/domain"
)

func i64(v int64) *int64 { return &v }

func TestAmortizeInstallmentSale(t *testing.T) {
	s := Amortize(Terms{
		Family:            domain.FamilyCredit,
		Amount:            30205,
		Installment:       i64(1),
		TotalInstallments: i64(5),
	})

	assert.EqualValues(t, 151025, s.TotalSale)
	assert.EqualValues(t, 30205, s.PaidToDate)
	assert.EqualValues(t, 120820, s.Outstanding)
	assert.EqualValues(t, 1, s.Installment)
	assert.EqualValues(t, 5, s.TotalInstallments)
}

func TestAmortizeSingleInstallment(t *testing.T) {
	tests := []struct {
		name  string
		terms Terms
	}{
		{"explicit single", Terms{Amount: 5000, Installment: i64(1), TotalInstallments: i64(1)}},
		{"nil total", Terms{Amount: 5000}},
		{"zero total", Terms{Amount: 5000, Installment: i64(0), TotalInstallments: i64(0)}},
		{"full settlement mark", Terms{Amount: 5000, Installment: i64(3), TotalInstallments: i64(12), FullSettlement: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Amortize(tt.terms)
			assert.EqualValues(t, 1, s.Installment)
			assert.EqualValues(t, 1, s.TotalInstallments)
			assert.EqualValues(t, 5000, s.PaidToDate)
			assert.EqualValues(t, 0, s.Outstanding)
		})
	}
}

func TestAmortizeMatchedGrossOverridesTotal(t *testing.T) {
	s := Amortize(Terms{
		Family:            domain.FamilyCredit,
		Amount:            30205,
		Installment:       i64(2),
		TotalInstallments: i64(5),
		TotalSale:         i64(151000),
	})

	assert.EqualValues(t, 151000, s.TotalSale)
	assert.EqualValues(t, 60410, s.PaidToDate)
	assert.EqualValues(t, 90590, s.Outstanding)
}

func TestAmortizeRoundingClamp(t *testing.T) {
	// 10001 over 3 installments of 3334 overshoots by 1 on the last one.
	s := Amortize(Terms{
		Family:            domain.FamilyCredit,
		Amount:            3334,
		Installment:       i64(3),
		TotalInstallments: i64(3),
		TotalSale:         i64(10001),
	})
	assert.EqualValues(t, 0, s.Outstanding)
}

func TestPending(t *testing.T) {
	cutoff := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
	after := time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)

	credit := Terms{Family: domain.FamilyCredit, Amount: 30205, Installment: i64(2), TotalInstallments: i64(5)}
	debit := Terms{Family: domain.FamilyDebit, Amount: 7000}

	assert.EqualValues(t, 0, Pending(credit, before, true, cutoff))
	assert.EqualValues(t, 0, Pending(credit, cutoff, true, cutoff), "payment on the cutoff day is settled")
	assert.EqualValues(t, 30205, Pending(credit, after, true, cutoff))
	assert.EqualValues(t, 30205, Pending(credit, time.Time{}, false, cutoff))
	assert.EqualValues(t, 7000, Pending(debit, after, true, cutoff))
}

func TestClampAsOf(t *testing.T) {
	assert.EqualValues(t, 0, ClampAsOf(5))
	assert.EqualValues(t, 0, ClampAsOf(-5))
	assert.EqualValues(t, 6, ClampAsOf(6))
	assert.EqualValues(t, -120, ClampAsOf(-120))
}
