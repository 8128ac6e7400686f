// Package statement builds the read-side views of the engine: the
// settlement statement, the daily status summary, and the pending-balance
// report. Everything here is derived on read; amortization and commission
// figures are never persisted.
package statement

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/acquirex/reconcile/pkg/debt"
	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/repository"
)

// Line is one settlement line of a statement, paired (or not) with its
// historical authorization and decorated with the derived figures.
type Line struct {
	Liquidation dto.StagedLiquidation
	Matched     *dto.HistoricalTransaction
	Valid       bool
	Commerce    string
	Commission  float64
	Gross       float64
	Schedule    debt.Schedule
}

// Statement is the settlement view of one family.
type Statement struct {
	Family domain.Family
	Lines  []Line
	Totals []dto.CommerceTotal
}

// Service builds statements and reports.
type Service struct {
	uow repository.UnitOfWork
	log *slog.Logger
}

// NewService wires a statement service.
func NewService(uow repository.UnitOfWork, log *slog.Logger) *Service {
	return &Service{uow: uow, log: log.With("service", "statement")}
}

// historicalCandidates loads and indexes the historical records reachable
// from the given settlement lines, keyed by canonical coupon.
func (s *Service) historicalCandidates(ctx context.Context, family domain.Family, liqs []dto.StagedLiquidation) (map[string][]match.Candidate, map[int64]dto.HistoricalTransaction, error) {
	p := match.ProfileFor(family)
	seen := map[string]bool{}
	var coupons []string
	for _, l := range liqs {
		coupon, _ := match.CanonicalCoupon(l.UniqueNumber, l.AuthorizationCode)
		if coupon != "" && !seen[coupon] {
			seen[coupon] = true
			coupons = append(coupons, coupon)
		}
	}
	if len(coupons) == 0 {
		return map[string][]match.Candidate{}, map[int64]dto.HistoricalTransaction{}, nil
	}

	hist, err := s.uow.History().Candidates(ctx, family, coupons)
	if err != nil {
		return nil, nil, err
	}
	byCoupon := map[string][]match.Candidate{}
	byID := map[int64]dto.HistoricalTransaction{}
	for _, h := range hist {
		day, ok := p.TransactionDay(h.TransactionDate)
		byCoupon[h.Coupon] = append(byCoupon[h.Coupon], match.Candidate{
			ID: h.ID,
			Side: match.Side{
				UniqueNumber:      h.UniqueNumber,
				AuthorizationCode: h.ApprovalCode,
				Day:               day,
				DayOK:             ok,
				Amount:            h.Amount,
			},
		})
		byID[h.ID] = h
	}
	return byCoupon, byID, nil
}

func liquidationSide(l dto.StagedLiquidation, p match.Profile) match.Side {
	day, ok := p.SaleDay(l.SaleDate)
	return match.Side{
		UniqueNumber:      l.UniqueNumber,
		AuthorizationCode: l.AuthorizationCode,
		Day:               day,
		DayOK:             ok,
		Amount:            l.Amount,
	}
}

func terms(l dto.StagedLiquidation, matched *dto.HistoricalTransaction) debt.Terms {
	t := debt.Terms{
		Family:            l.Family,
		Installment:       l.Installment,
		TotalInstallments: l.TotalInstallments,
		FullSettlement:    l.Withheld == debt.FullSettlementMark,
	}
	if l.Amount != nil {
		t.Amount = *l.Amount
	}
	if matched != nil && matched.Amount != nil {
		t.TotalSale = matched.Amount
	}
	return t
}

// Build assembles the settlement statement for one family, optionally
// restricted to one source file. Internal merchant codes are excluded
// from the totals but kept on the lines.
func (s *Service) Build(ctx context.Context, family domain.Family, sourceFile string) (*Statement, error) {
	p := match.ProfileFor(family)
	liqs, err := s.uow.Liquidations().ListByFamily(ctx, family, sourceFile)
	if err != nil {
		return nil, err
	}
	byCoupon, byID, err := s.historicalCandidates(ctx, family, liqs)
	if err != nil {
		return nil, err
	}

	st := &Statement{Family: family}
	totals := map[string]*dto.CommerceTotal{}
	for _, l := range liqs {
		line := Line{Liquidation: l, Commerce: match.CommerceCode(l.PrincipalCommerce, l.CommerceNumber, family)}

		coupon, _ := match.CanonicalCoupon(l.UniqueNumber, l.AuthorizationCode)
		hit, err := match.Match(liquidationSide(l, p), byCoupon[coupon], p)
		if err != nil {
			var ambiguous *match.AmbiguousMatchError
			if !errors.As(err, &ambiguous) {
				return nil, err
			}
			s.log.Warn("ambiguous settlement line", "coupon", ambiguous.Coupon, "candidates", ambiguous.Count)
		}
		if hit != nil {
			h := byID[hit.ID]
			line.Matched = &h
			line.Valid = true
		}

		var amount int64
		if l.Amount != nil {
			amount = *l.Amount
		}
		line.Commission = match.Commission(amount, family)
		line.Gross = match.Gross(amount, family)
		line.Schedule = debt.Amortize(terms(l, line.Matched))
		st.Lines = append(st.Lines, line)

		if match.IsInternalMerchant(line.Commerce) {
			continue
		}
		tot, ok := totals[line.Commerce]
		if !ok {
			tot = &dto.CommerceTotal{CommerceCode: line.Commerce}
			totals[line.Commerce] = tot
		}
		tot.Records++
		tot.Amount += amount
		tot.CommissionCents += match.CommissionCents(amount, family)
		tot.GrossCents += int64(match.Gross(amount, family)*100 + 0.5)
	}

	for _, tot := range totals {
		st.Totals = append(st.Totals, *tot)
	}
	sort.Slice(st.Totals, func(i, j int) bool { return st.Totals[i].CommerceCode < st.Totals[j].CommerceCode })
	return st, nil
}

// StatusSummary counts staged authorization records per date and status.
func (s *Service) StatusSummary(ctx context.Context, family domain.Family) ([]dto.StatusCount, error) {
	return s.uow.Transactions().StatusSummary(ctx, family)
}

// PendingEntry is one merchant's outstanding balance as of a cutoff.
type PendingEntry struct {
	CommerceCode string
	Lines        int64
	Outstanding  int64
}

// PendingBalance aggregates, per merchant, the settlement amounts whose
// payment date falls after the cutoff or never decoded. Internal
// merchants are excluded.
func (s *Service) PendingBalance(ctx context.Context, family domain.Family, cutoff time.Time) ([]PendingEntry, error) {
	p := match.ProfileFor(family)
	liqs, err := s.uow.Liquidations().ListByFamily(ctx, family, "")
	if err != nil {
		return nil, err
	}
	byCoupon, byID, err := s.historicalCandidates(ctx, family, liqs)
	if err != nil {
		return nil, err
	}

	totals := map[string]*PendingEntry{}
	for _, l := range liqs {
		commerce := match.CommerceCode(l.PrincipalCommerce, l.CommerceNumber, family)
		if match.IsInternalMerchant(commerce) {
			continue
		}

		coupon, _ := match.CanonicalCoupon(l.UniqueNumber, l.AuthorizationCode)
		hit, err := match.Match(liquidationSide(l, p), byCoupon[coupon], p)
		if err != nil {
			var ambiguous *match.AmbiguousMatchError
			if !errors.As(err, &ambiguous) {
				return nil, err
			}
			hit = nil
		}
		var matched *dto.HistoricalTransaction
		if hit != nil {
			h := byID[hit.ID]
			matched = &h
		}

		payDay, payOK := p.PaymentDay(l.PaymentDate)
		owed := debt.Pending(terms(l, matched), payDay, payOK, cutoff)
		if owed == 0 {
			continue
		}
		entry, ok := totals[commerce]
		if !ok {
			entry = &PendingEntry{CommerceCode: commerce}
			totals[commerce] = entry
		}
		entry.Lines++
		entry.Outstanding += owed
	}

	var out []PendingEntry
	for _, entry := range totals {
		entry.Outstanding = debt.ClampAsOf(entry.Outstanding)
		if entry.Outstanding == 0 {
			continue
		}
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommerceCode < out[j].CommerceCode })
	return out, nil
}
