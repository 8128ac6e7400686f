package coupon

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/testutils"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveCanonicalizesAndDeduplicates(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, UniqueNumber: "00042", TransactionDate: "250428", RegisterID: "R1", Status: domain.StatusPending},
		{ID: 2, Family: domain.FamilyCredit, UniqueNumber: "0042", TransactionDate: "250428", RegisterID: "R2", Status: domain.StatusPending},
		{ID: 3, Family: domain.FamilyDebit, UniqueNumber: "000000", ApprovalCode: "ZX99", TransactionDate: "250428", Status: domain.StatusPending},
		{ID: 4, Family: domain.FamilyCredit, UniqueNumber: "42", TransactionDate: "250429", Status: domain.StatusPending},
		// Already matched records are not revisited.
		{ID: 5, Family: domain.FamilyCredit, UniqueNumber: "777", TransactionDate: "250428", Status: domain.StatusFound},
	}

	n, err := NewService(uow, discard()).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, uow.CouponRows, 3)
	assert.Equal(t, "42", uow.CouponRows[0].Coupon)
	assert.Equal(t, "250428", uow.CouponRows[0].TransactionDate)
	assert.Equal(t, "R1", uow.CouponRows[0].CustomerID, "first writer wins")
	assert.Equal(t, "250429", uow.CouponRows[1].TransactionDate)
	assert.Equal(t, "ZX99", uow.CouponRows[2].Coupon)
}

func TestResolveKeepsExistingRows(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.CouponRows = []dto.CouponResolution{
		{Coupon: "42", TransactionDate: "250428", CustomerID: "original"},
	}
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, UniqueNumber: "042", TransactionDate: "250428", RegisterID: "late", Status: domain.StatusPending},
	}

	n, err := NewService(uow, discard()).Resolve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	require.Len(t, uow.CouponRows, 1)
	assert.Equal(t, "original", uow.CouponRows[0].CustomerID)
}

func TestResolveSkipsBlankCoupons(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyDebit, UniqueNumber: "0000", ApprovalCode: "   ", TransactionDate: "250428", Status: domain.StatusPending},
	}

	n, err := NewService(uow, discard()).Resolve(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, uow.CouponRows)
}
