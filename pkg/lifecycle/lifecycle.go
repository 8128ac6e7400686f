// Package lifecycle owns the reconciliation status machine: the
// post-ingest matching pass, single-coupon reprocessing, and the atomic
// accounting close that moves approved records to history.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/eventbus"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/repository"
)

var validate = validator.New()

// closeRequest carries the operator input of an accounting close.
type closeRequest struct {
	Family    domain.Family `validate:"oneof=CREDIT DEBIT"`
	BatchDate string        `validate:"required,len=6,number"`
	Actor     string        `validate:"required"`
}

// BlockedError refuses an accounting close while an earlier date of the
// same family still holds unresolved records. Dates close in order.
type BlockedError struct {
	Family       domain.Family
	BlockingDate string // RRMMDD, the most recent offender
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s close blocked: date %s still has unresolved records", e.Family, e.BlockingDate)
}

// Manager drives status transitions for staged authorization records.
type Manager struct {
	uow repository.UnitOfWork
	bus eventbus.Bus
	log *slog.Logger
}

// NewManager wires a lifecycle manager.
func NewManager(uow repository.UnitOfWork, bus eventbus.Bus, log *slog.Logger) *Manager {
	return &Manager{uow: uow, bus: bus, log: log.With("service", "lifecycle")}
}

// liquidationSide reduces one staged settlement line to match keys.
func liquidationSide(l dto.StagedLiquidation, p match.Profile) match.Candidate {
	day, ok := p.SaleDay(l.SaleDate)
	return match.Candidate{
		ID: l.ID,
		Side: match.Side{
			UniqueNumber:      l.UniqueNumber,
			AuthorizationCode: l.AuthorizationCode,
			Day:               day,
			DayOK:             ok,
			Amount:            l.Amount,
		},
	}
}

func transactionSide(t dto.StagedTransaction, p match.Profile) match.Side {
	day, ok := p.TransactionDay(t.TransactionDate)
	return match.Side{
		UniqueNumber:      t.UniqueNumber,
		AuthorizationCode: t.ApprovalCode,
		Day:               day,
		DayOK:             ok,
		Amount:            t.Amount,
	}
}

// RefreshStatuses runs the matching pass for one family: every PENDING
// authorization record is paired against the staged settlement lines and
// moved to FOUND or NOT_FOUND. An ambiguous pair counts as NOT_FOUND; the
// matcher never picks an arbitrary candidate. Returns found and
// not-found counts.
func (m *Manager) RefreshStatuses(ctx context.Context, family domain.Family) (int, int, error) {
	p := match.ProfileFor(family)
	var found, notFound []int64

	err := m.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		pending, err := uow.Transactions().ListByStatus(ctx, family, domain.StatusPending)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		liqs, err := uow.Liquidations().ListByFamily(ctx, family, "")
		if err != nil {
			return err
		}
		candidates := make([]match.Candidate, len(liqs))
		for i, l := range liqs {
			candidates[i] = liquidationSide(l, p)
		}

		for _, rec := range pending {
			hit, err := match.Match(transactionSide(rec, p), candidates, p)
			if err != nil {
				var ambiguous *match.AmbiguousMatchError
				if !errors.As(err, &ambiguous) {
					return err
				}
				m.log.Warn("ambiguous coupon left unmatched",
					"coupon", ambiguous.Coupon, "candidates", ambiguous.Count, "record", rec.ID)
				hit = nil
			}
			if hit != nil {
				found = append(found, rec.ID)
			} else {
				notFound = append(notFound, rec.ID)
			}
		}

		if err := uow.Transactions().UpdateStatus(ctx, found, domain.StatusFound); err != nil {
			return err
		}
		return uow.Transactions().UpdateStatus(ctx, notFound, domain.StatusNotFound)
	})
	if err != nil {
		return 0, 0, err
	}
	m.log.Info("status pass complete", "family", family, "found", len(found), "not_found", len(notFound))
	return len(found), len(notFound), nil
}

// ReprocessOutcome reports one operator-initiated re-match.
type ReprocessOutcome struct {
	RecordID int64
	Coupon   string
	Previous domain.Status
	Status   domain.Status
	Matched  bool
	Detail   string
}

// Reprocess re-runs the matcher for a single staged record. A hit moves
// it to FOUND; a miss moves it to REPROCESS so the close can still carry
// it after manual review. Any store failure rolls back and preserves the
// original status.
func (m *Manager) Reprocess(ctx context.Context, recordID int64) (*ReprocessOutcome, error) {
	var out *ReprocessOutcome
	err := m.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		rec, err := uow.Transactions().Get(ctx, recordID)
		if err != nil {
			return err
		}
		p := match.ProfileFor(rec.Family)
		liqs, err := uow.Liquidations().ListByFamily(ctx, rec.Family, "")
		if err != nil {
			return err
		}
		candidates := make([]match.Candidate, len(liqs))
		for i, l := range liqs {
			candidates[i] = liquidationSide(l, p)
		}

		out = &ReprocessOutcome{RecordID: rec.ID, Coupon: rec.Coupon, Previous: rec.Status}
		hit, err := match.Match(transactionSide(*rec, p), candidates, p)
		if err != nil {
			var ambiguous *match.AmbiguousMatchError
			if !errors.As(err, &ambiguous) {
				return err
			}
			out.Detail = ambiguous.Error()
		}
		if hit != nil {
			out.Status = domain.StatusFound
			out.Matched = true
			out.Detail = fmt.Sprintf("matched settlement line %d", hit.ID)
		} else {
			out.Status = domain.StatusReprocess
		}
		return uow.Transactions().UpdateStatus(ctx, []int64{rec.ID}, out.Status)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CloseResult reports one accounting close batch.
type CloseResult struct {
	Family     domain.Family
	BatchDate  string
	Records    int
	Amount     int64
	DailyTotal int64
}

// SendToAccounting closes one transaction date for a family: every
// FOUND or REPROCESS record on that date is copied to the historical
// table, deleted from staging, and journaled, all in one transaction.
// The close is refused with a BlockedError while any earlier date still
// has unresolved records. batchDate is RRMMDD, which orders
// chronologically under plain string comparison.
func (m *Manager) SendToAccounting(ctx context.Context, family domain.Family, batchDate, actor string) (*CloseResult, error) {
	if err := validate.Struct(closeRequest{Family: family, BatchDate: batchDate, Actor: actor}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	var result *CloseResult
	err := m.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		blocking, err := uow.Transactions().UnresolvedDatesBefore(ctx, family, batchDate)
		if err != nil {
			return err
		}
		if len(blocking) > 0 {
			return &BlockedError{Family: family, BlockingDate: blocking[0]}
		}

		batch, err := uow.Transactions().SendableByDate(ctx, family, batchDate)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return fmt.Errorf("no sendable records for %s on %s: %w", family, batchDate, domain.ErrNotFound)
		}

		now := time.Now().UTC()
		ids := make([]int64, len(batch))
		hist := make([]dto.HistoricalTransaction, len(batch))
		var amount int64
		for i, rec := range batch {
			ids[i] = rec.ID
			if rec.Amount != nil {
				amount += *rec.Amount
			}
			hist[i] = dto.HistoricalTransaction{
				Family:          rec.Family,
				Coupon:          rec.Coupon,
				UniqueNumber:    rec.UniqueNumber,
				ApprovalCode:    rec.ApprovalCode,
				TransactionDate: rec.TransactionDate,
				Amount:          rec.Amount,
				RetailerID:      rec.RetailerID,
				CardNumber:      rec.CardNumber,
				CustomerName:    rec.CustomerName,
				DocumentType:    rec.DocumentType,
				SourceFile:      rec.SourceFile,
				ProcessedAt:     now,
			}
		}

		if err := uow.History().BatchInsert(ctx, hist); err != nil {
			return err
		}
		if err := uow.Transactions().DeleteByIDs(ctx, ids); err != nil {
			return err
		}

		prior, err := uow.Audit().DailyTotal(ctx, family, batchDate)
		if err != nil {
			return err
		}
		result = &CloseResult{
			Family:     family,
			BatchDate:  batchDate,
			Records:    len(batch),
			Amount:     amount,
			DailyTotal: prior + amount,
		}
		return uow.Audit().Append(ctx, dto.AuditLogEntry{
			Actor:      actor,
			Family:     family,
			BatchDate:  batchDate,
			Records:    result.Records,
			DailyTotal: result.DailyTotal,
			SentAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := m.bus.Publish(ctx, domain.BatchSentToAccounting{
		Family:  family,
		Date:    batchDate,
		Actor:   actor,
		Records: result.Records,
		SentAt:  time.Now().UTC(),
	}); err != nil {
		m.log.Warn("publish failed", "event", "accounting.batch_sent", "error", err)
	}
	m.log.Info("accounting close complete",
		"family", family, "date", batchDate, "records", result.Records, "daily_total", result.DailyTotal)
	return result, nil
}
