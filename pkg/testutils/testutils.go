// Package testutils provides in-memory persistence fakes for service
// tests. The fake unit of work keeps every table as a slice and applies
// writes immediately; Do simply runs the function and, on error, replays
// nothing, so tests assert rollback by checking the returned error plus
// the Rollbacks counter.
package testutils

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/repository"
)

// FakeUoW is an in-memory repository.UnitOfWork.
type FakeUoW struct {
	StagedTransactions []dto.StagedTransaction
	Historical         []dto.HistoricalTransaction
	StagedLiquidations       []dto.StagedLiquidation
	HistoricalLiqs     []dto.HistoricalLiquidation
	CouponRows         []dto.CouponResolution
	IngestEntries      []dto.IngestLogEntry
	AuditEntries       []dto.AuditLogEntry

	NextID    int64
	Rollbacks int

	// Err, when set, is returned by every repository write to simulate
	// an unreachable store.
	Err error
}

// NewFakeUoW returns an empty fake store.
func NewFakeUoW() *FakeUoW { return &FakeUoW{NextID: 1} }

func (f *FakeUoW) id() int64 {
	id := f.NextID
	f.NextID++
	return id
}

// Do runs fn against the same fake. Writes are not snapshotted; tests
// that need rollback semantics assert on the error and Rollbacks.
func (f *FakeUoW) Do(_ context.Context, fn func(uow repository.UnitOfWork) error) error {
	if err := fn(f); err != nil {
		f.Rollbacks++
		return err
	}
	return nil
}

func (f *FakeUoW) Transactions() repository.TransactionRepository { return (*fakeTransactions)(f) }
func (f *FakeUoW) History() repository.HistoryRepository          { return (*fakeHistory)(f) }
func (f *FakeUoW) Liquidations() repository.LiquidationRepository { return (*fakeLiquidations)(f) }
func (f *FakeUoW) Coupons() repository.CouponRepository           { return (*fakeCoupons)(f) }
func (f *FakeUoW) IngestLog() repository.IngestLogRepository      { return (*fakeIngestLog)(f) }
func (f *FakeUoW) Audit() repository.AuditRepository              { return (*fakeAudit)(f) }

type fakeTransactions FakeUoW

func (r *fakeTransactions) BatchInsert(_ context.Context, records []dto.StagedTransaction) error {
	if r.Err != nil {
		return r.Err
	}
	for _, rec := range records {
		rec.ID = (*FakeUoW)(r).id()
		if rec.Status == "" {
			rec.Status = domain.StatusPending
		}
		r.StagedTransactions = append(r.StagedTransactions, rec)
	}
	return nil
}

func (r *fakeTransactions) ListByStatus(_ context.Context, family domain.Family, status domain.Status) ([]dto.StagedTransaction, error) {
	var out []dto.StagedTransaction
	for _, rec := range r.StagedTransactions {
		if rec.Family == family && rec.Status == status {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionDate < out[j].TransactionDate })
	return out, nil
}

func (r *fakeTransactions) Get(_ context.Context, id int64) (*dto.StagedTransaction, error) {
	for i := range r.StagedTransactions {
		if r.StagedTransactions[i].ID == id {
			rec := r.StagedTransactions[i]
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTransactions) UpdateStatus(_ context.Context, ids []int64, status domain.Status) error {
	if r.Err != nil {
		return r.Err
	}
	for _, id := range ids {
		for i := range r.StagedTransactions {
			if r.StagedTransactions[i].ID == id {
				r.StagedTransactions[i].Status = status
			}
		}
	}
	return nil
}

func (r *fakeTransactions) SetEnrichment(_ context.Context, coupon, customerName, documentType string) error {
	for i := range r.StagedTransactions {
		if r.StagedTransactions[i].Coupon == coupon {
			r.StagedTransactions[i].CustomerName = customerName
			r.StagedTransactions[i].DocumentType = documentType
		}
	}
	return nil
}

func (r *fakeTransactions) SendableByDate(_ context.Context, family domain.Family, date string) ([]dto.StagedTransaction, error) {
	var out []dto.StagedTransaction
	for _, rec := range r.StagedTransactions {
		if rec.Family == family && rec.TransactionDate == date && rec.Status.Sendable() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeTransactions) UnresolvedDatesBefore(_ context.Context, family domain.Family, date string) ([]string, error) {
	seen := map[string]bool{}
	for _, rec := range r.StagedTransactions {
		if rec.Family == family && rec.TransactionDate < date && rec.Status.Unresolved() {
			seen[rec.TransactionDate] = true
		}
	}
	var out []string
	for d := range seen {
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (r *fakeTransactions) DeleteByIDs(_ context.Context, ids []int64) error {
	if r.Err != nil {
		return r.Err
	}
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.StagedTransactions[:0]
	for _, rec := range r.StagedTransactions {
		if !drop[rec.ID] {
			kept = append(kept, rec)
		}
	}
	r.StagedTransactions = kept
	return nil
}

func (r *fakeTransactions) StatusSummary(_ context.Context, family domain.Family) ([]dto.StatusCount, error) {
	counts := map[dto.StatusCount]int64{}
	for _, rec := range r.StagedTransactions {
		if rec.Family == family {
			counts[dto.StatusCount{Date: rec.TransactionDate, Status: rec.Status}]++
		}
	}
	var out []dto.StatusCount
	for key, n := range counts {
		key.Count = n
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

type fakeHistory FakeUoW

func (r *fakeHistory) BatchInsert(_ context.Context, records []dto.HistoricalTransaction) error {
	if r.Err != nil {
		return r.Err
	}
	for _, rec := range records {
		rec.ID = (*FakeUoW)(r).id()
		r.Historical = append(r.Historical, rec)
	}
	return nil
}

func (r *fakeHistory) Candidates(_ context.Context, family domain.Family, coupons []string) ([]dto.HistoricalTransaction, error) {
	want := map[string]bool{}
	for _, c := range coupons {
		want[c] = true
	}
	var out []dto.HistoricalTransaction
	for _, rec := range r.Historical {
		if rec.Family == family && want[rec.Coupon] {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeLiquidations FakeUoW

func (r *fakeLiquidations) BatchInsert(_ context.Context, records []dto.StagedLiquidation) error {
	if r.Err != nil {
		return r.Err
	}
	for _, rec := range records {
		rec.ID = (*FakeUoW)(r).id()
		r.StagedLiquidations = append(r.StagedLiquidations, rec)
	}
	return nil
}

func (r *fakeLiquidations) ListByFamily(_ context.Context, family domain.Family, sourceFile string) ([]dto.StagedLiquidation, error) {
	var out []dto.StagedLiquidation
	for _, rec := range r.StagedLiquidations {
		if rec.Family == family && (sourceFile == "" || rec.SourceFile == sourceFile) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeLiquidations) MoveToHistory(_ context.Context, ids []int64, _ string) error {
	if r.Err != nil {
		return r.Err
	}
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := r.StagedLiquidations[:0]
	for _, rec := range r.StagedLiquidations {
		if !drop[rec.ID] {
			kept = append(kept, rec)
			continue
		}
		r.HistoricalLiqs = append(r.HistoricalLiqs, dto.HistoricalLiquidation{
			ID:                rec.ID,
			Family:            rec.Family,
			CommerceNumber:    rec.CommerceNumber,
			SaleDate:          rec.SaleDate,
			PaymentDate:       rec.PaymentDate,
			UniqueNumber:      rec.UniqueNumber,
			AuthorizationCode: rec.AuthorizationCode,
			Amount:            rec.Amount,
			Installment:       rec.Installment,
			TotalInstallments: rec.TotalInstallments,
			SourceFile:        rec.SourceFile,
			ProcessedAt:       time.Now().UTC(),
		})
	}
	r.StagedLiquidations = kept
	return nil
}

type fakeCoupons FakeUoW

func (r *fakeCoupons) InsertIfAbsent(_ context.Context, resolutions []dto.CouponResolution) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	inserted := 0
	for _, res := range resolutions {
		if r.find(res.Coupon, res.TransactionDate) >= 0 {
			continue
		}
		r.CouponRows = append(r.CouponRows, res)
		inserted++
	}
	return inserted, nil
}

func (r *fakeCoupons) find(coupon, date string) int {
	for i := range r.CouponRows {
		if r.CouponRows[i].Coupon == coupon && r.CouponRows[i].TransactionDate == date {
			return i
		}
	}
	return -1
}

func (r *fakeCoupons) ListUnenriched(_ context.Context, limit int) ([]dto.CouponResolution, error) {
	var out []dto.CouponResolution
	for _, res := range r.CouponRows {
		if strings.TrimSpace(res.Enrichment) == "" {
			out = append(out, res)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeCoupons) SetEnrichment(_ context.Context, coupon, date, displayName, payload string) error {
	if i := r.find(coupon, date); i >= 0 && r.CouponRows[i].Enrichment == "" {
		r.CouponRows[i].DisplayName = displayName
		r.CouponRows[i].Enrichment = payload
	}
	return nil
}

type fakeIngestLog FakeUoW

func (r *fakeIngestLog) Processed(_ context.Context, logicalName string) (bool, error) {
	for _, e := range r.IngestEntries {
		if e.LogicalName == logicalName && e.State == dto.IngestProcessed {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeIngestLog) Record(_ context.Context, entry dto.IngestLogEntry) error {
	if r.Err != nil {
		return r.Err
	}
	entry.ID = (*FakeUoW)(r).id()
	r.IngestEntries = append(r.IngestEntries, entry)
	return nil
}

type fakeAudit FakeUoW

func (r *fakeAudit) Append(_ context.Context, entry dto.AuditLogEntry) error {
	if r.Err != nil {
		return r.Err
	}
	entry.ID = (*FakeUoW)(r).id()
	r.AuditEntries = append(r.AuditEntries, entry)
	return nil
}

func (r *fakeAudit) DailyTotal(_ context.Context, family domain.Family, batchDate string) (int64, error) {
	var total int64
	for _, e := range r.AuditEntries {
		if e.Family == family && e.BatchDate == batchDate {
			total = e.DailyTotal
		}
	}
	return total, nil
}
