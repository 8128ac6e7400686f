package statement

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/testutils"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func amount(v int64) *int64 { return &v }

func TestBuildStatement(t *testing.T) {
	uow := testutils.NewFakeUoW()
	principal := int64(11112222)
	sentinel := int64(99999999)
	uow.StagedLiquidations = []dto.StagedLiquidation{
		{
			ID: 1, Family: domain.FamilyCredit,
			CommerceNumber: "33334444", PrincipalCommerce: &principal,
			SaleDate: "28042025", UniqueNumber: "00042",
			Amount: amount(30205), Installment: amount(1), TotalInstallments: amount(5),
		},
		{
			ID: 2, Family: domain.FamilyCredit,
			CommerceNumber: "33334444", PrincipalCommerce: &sentinel,
			SaleDate: "28042025", UniqueNumber: "777",
			Amount: amount(100000),
		},
		{
			// Internal merchant: shown on the line, excluded from totals.
			ID: 3, Family: domain.FamilyCredit,
			CommerceNumber: "28208820", PrincipalCommerce: &sentinel,
			SaleDate: "28042025", UniqueNumber: "888",
			Amount: amount(5000),
		},
	}
	uow.Historical = []dto.HistoricalTransaction{
		{ID: 10, Family: domain.FamilyCredit, Coupon: "42", UniqueNumber: "42", TransactionDate: "250428", Amount: amount(151025)},
	}

	st, err := NewService(uow, discard()).Build(context.Background(), domain.FamilyCredit, "")
	require.NoError(t, err)
	require.Len(t, st.Lines, 3)

	matched := st.Lines[0]
	assert.True(t, matched.Valid)
	require.NotNil(t, matched.Matched)
	assert.EqualValues(t, 10, matched.Matched.ID)
	assert.Equal(t, "11112222", matched.Commerce)
	assert.InDelta(t, 302.05*0.0090, matched.Commission, 1e-9)
	// The matched historical gross drives the amortization total.
	assert.EqualValues(t, 151025, matched.Schedule.TotalSale)
	assert.EqualValues(t, 120820, matched.Schedule.Outstanding)

	unmatched := st.Lines[1]
	assert.False(t, unmatched.Valid)
	assert.Equal(t, "33334444", unmatched.Commerce, "sentinel principal falls back to own commerce")

	require.Len(t, st.Totals, 2, "internal merchant excluded")
	assert.Equal(t, "11112222", st.Totals[0].CommerceCode)
	assert.Equal(t, "33334444", st.Totals[1].CommerceCode)
	assert.EqualValues(t, 900, st.Totals[1].CommissionCents)
}

func TestStatusSummary(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, TransactionDate: "250428", Status: domain.StatusFound},
		{ID: 2, Family: domain.FamilyCredit, TransactionDate: "250428", Status: domain.StatusFound},
		{ID: 3, Family: domain.FamilyCredit, TransactionDate: "250428", Status: domain.StatusNotFound},
		{ID: 4, Family: domain.FamilyDebit, TransactionDate: "250428", Status: domain.StatusFound},
	}

	counts, err := NewService(uow, discard()).StatusSummary(context.Background(), domain.FamilyCredit)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.EqualValues(t, 2, counts[0].Count)
	assert.Equal(t, domain.StatusFound, counts[0].Status)
	assert.EqualValues(t, 1, counts[1].Count)
}

func TestPendingBalance(t *testing.T) {
	uow := testutils.NewFakeUoW()
	sentinel := int64(99999999)
	uow.StagedLiquidations = []dto.StagedLiquidation{
		{
			// Paid before the cutoff: nothing owed.
			ID: 1, Family: domain.FamilyCredit, CommerceNumber: "33334444", PrincipalCommerce: &sentinel,
			SaleDate: "28042025", PaymentDate: "29042025", UniqueNumber: "41",
			Amount: amount(10000),
		},
		{
			// Pays after the cutoff: the installment is outstanding.
			ID: 2, Family: domain.FamilyCredit, CommerceNumber: "33334444", PrincipalCommerce: &sentinel,
			SaleDate: "28042025", PaymentDate: "28052025", UniqueNumber: "42",
			Amount: amount(30205), Installment: amount(2), TotalInstallments: amount(5),
		},
		{
			// No payment date on record: treated as outstanding.
			ID: 3, Family: domain.FamilyCredit, CommerceNumber: "55556666", PrincipalCommerce: &sentinel,
			SaleDate: "28042025", UniqueNumber: "43",
			Amount: amount(7000),
		},
	}

	cutoff := time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC)
	entries, err := NewService(uow, discard()).PendingBalance(context.Background(), domain.FamilyCredit, cutoff)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "33334444", entries[0].CommerceCode)
	assert.EqualValues(t, 30205, entries[0].Outstanding)
	assert.Equal(t, "55556666", entries[1].CommerceCode)
	assert.EqualValues(t, 7000, entries[1].Outstanding)
}
