// Package coupon maintains the coupon resolution master. After every
// ingestion run it derives the canonical coupon of each pending
// authorization record and merges it into the master keyed by
// (coupon, transaction date), first writer wins.
package coupon

import (
	"context"
	"log/slog"
	"time"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/repository"
)

// Service runs the canonicalization pass.
type Service struct {
	uow repository.UnitOfWork
	log *slog.Logger
}

// NewService wires a canonicalization service.
func NewService(uow repository.UnitOfWork, log *slog.Logger) *Service {
	return &Service{uow: uow, log: log.With("service", "coupon")}
}

// Resolve derives canonical coupons for every pending authorization
// record of both families and merges them into the master. It returns
// the number of newly created resolutions; repeats of an existing
// (coupon, date) key are dropped, never overwritten.
func (s *Service) Resolve(ctx context.Context) (int, error) {
	inserted := 0
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		var batch []dto.CouponResolution
		seen := map[[2]string]bool{}
		for _, family := range []domain.Family{domain.FamilyCredit, domain.FamilyDebit} {
			pending, err := uow.Transactions().ListByStatus(ctx, family, domain.StatusPending)
			if err != nil {
				return err
			}
			for _, rec := range pending {
				coupon, _ := match.CanonicalCoupon(rec.UniqueNumber, rec.ApprovalCode)
				if coupon == "" {
					continue
				}
				key := [2]string{coupon, rec.TransactionDate}
				if seen[key] {
					continue
				}
				seen[key] = true
				batch = append(batch, dto.CouponResolution{
					Coupon:          coupon,
					TransactionDate: rec.TransactionDate,
					CustomerID:      rec.RegisterID,
					CreatedAt:       time.Now().UTC(),
				})
			}
		}
		if len(batch) == 0 {
			return nil
		}
		n, err := uow.Coupons().InsertIfAbsent(ctx, batch)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("coupon pass complete", "resolutions", inserted)
	return inserted, nil
}
