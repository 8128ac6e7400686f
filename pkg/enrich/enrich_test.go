package enrich

import (
	"context"
	"errors"
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

type stubLookup struct {
	calls   map[string]int
	results map[string]*Result
	err     error
}

func (s *stubLookup) Lookup(_ context.Context, identifier string) (*Result, error) {
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[identifier]++
	if s.err != nil {
		return nil, s.err
	}
	return s.results[identifier], nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunLooksUpEachIdentifierOnce(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.CouponRows = []dto.CouponResolution{
		{Coupon: "42", TransactionDate: "250428", CustomerID: "11111111"},
		{Coupon: "43", TransactionDate: "250428", CustomerID: "11111111"},
		{Coupon: "44", TransactionDate: "250429", CustomerID: "22222222"},
	}
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, Coupon: "42", Status: domain.StatusPending},
	}
	lookup := &stubLookup{results: map[string]*Result{
		"11111111": {DisplayName: "ACME LTDA", DocumentType: "RUT", Payload: `{"name":"ACME LTDA"}`},
		"22222222": {DisplayName: "BETA SPA", DocumentType: "RUT", Payload: `{"name":"BETA SPA"}`},
	}}

	svc := NewService(uow, lookup, discard(), time.Second, 0)
	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, 1, lookup.calls["11111111"], "identifier looked up once per pass")
	assert.Equal(t, 1, lookup.calls["22222222"])
	assert.Equal(t, "ACME LTDA", uow.CouponRows[0].DisplayName)
	assert.Equal(t, "ACME LTDA", uow.StagedTransactions[0].CustomerName)
	assert.Equal(t, "RUT", uow.StagedTransactions[0].DocumentType)
}

func TestRunDegradesToSentinels(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.CouponRows = []dto.CouponResolution{
		{Coupon: "42", TransactionDate: "250428", CustomerID: "11111111"},
	}
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, Coupon: "42", Status: domain.StatusPending},
	}
	lookup := &stubLookup{err: errors.New("connection refused")}

	svc := NewService(uow, lookup, discard(), time.Second, 0)
	require.NoError(t, svc.Run(context.Background()), "lookup failure never fails the pass")
	assert.Equal(t, DisplayUnavailable, uow.StagedTransactions[0].CustomerName)
}

func TestRunUnknownIdentifier(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.CouponRows = []dto.CouponResolution{
		{Coupon: "42", TransactionDate: "250428", CustomerID: "99999999"},
	}
	uow.StagedTransactions = []dto.StagedTransaction{
		{ID: 1, Family: domain.FamilyCredit, Coupon: "42", Status: domain.StatusPending},
	}
	lookup := &stubLookup{results: map[string]*Result{}}

	svc := NewService(uow, lookup, discard(), time.Second, 0)
	require.NoError(t, svc.Run(context.Background()))
	assert.Equal(t, DisplayNotFound, uow.StagedTransactions[0].CustomerName)
}
