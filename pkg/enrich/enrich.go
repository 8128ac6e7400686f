// Package enrich decorates coupon resolutions and staged records with
// customer display fields from an external lookup service. Enrichment is
// strictly best-effort: a failed or timed-out lookup degrades to a
// sentinel display value and the pass keeps going.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/acquirex/reconcile/pkg/repository"
)

// Sentinel display values written when the external service cannot
// answer. Downstream listings show them verbatim.
const (
	DisplayNotFound    = "NOT FOUND"
	DisplayUnavailable = "LOOKUP FAILED"
)

// Result is a successful lookup.
type Result struct {
	DisplayName  string
	DocumentType string
	Payload      string // raw service response, stored opaquely
}

// Lookup resolves one customer identifier. Implementations must honor
// the context deadline and return an error rather than block; a nil
// result with nil error means the identifier is unknown to the service.
type Lookup interface {
	Lookup(ctx context.Context, identifier string) (*Result, error)
}

// Service runs the enrichment pass.
type Service struct {
	uow     repository.UnitOfWork
	lookup  Lookup
	log     *slog.Logger
	timeout time.Duration
	limit   int
}

// NewService wires an enrichment service. timeout bounds each individual
// lookup; limit caps how many resolutions one pass touches.
func NewService(uow repository.UnitOfWork, lookup Lookup, log *slog.Logger, timeout time.Duration, limit int) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{uow: uow, lookup: lookup, log: log.With("service", "enrich"), timeout: timeout, limit: limit}
}

// Run enriches unresolved coupon rows. Each distinct identifier is
// looked up at most once per pass; lookups run outside any store
// transaction so a slow service never holds one open. Run only errors
// when the store itself does.
func (s *Service) Run(ctx context.Context) error {
	rows, err := s.uow.Coupons().ListUnenriched(ctx, s.limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	memo := map[string]*Result{}
	enriched, degraded := 0, 0
	for _, row := range rows {
		res, seen := memo[row.CustomerID]
		if !seen {
			res = s.lookupOnce(ctx, row.CustomerID)
			memo[row.CustomerID] = res
		}

		name, doc, payload := res.DisplayName, res.DocumentType, res.Payload
		if payload == "" {
			degraded++
		} else {
			enriched++
		}
		if err := s.uow.Coupons().SetEnrichment(ctx, row.Coupon, row.TransactionDate, name, payload); err != nil {
			return err
		}
		if err := s.uow.Transactions().SetEnrichment(ctx, row.Coupon, name, doc); err != nil {
			return err
		}
	}
	s.log.Info("enrichment pass complete", "rows", len(rows), "enriched", enriched, "degraded", degraded)
	return nil
}

// lookupOnce performs one bounded lookup and maps every failure mode to
// a sentinel result.
func (s *Service) lookupOnce(ctx context.Context, identifier string) *Result {
	if identifier == "" {
		return &Result{DisplayName: DisplayNotFound}
	}
	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.lookup.Lookup(lctx, identifier)
	switch {
	case err != nil:
		s.log.Warn("lookup failed", "identifier", identifier, "error", err)
		return &Result{DisplayName: DisplayUnavailable}
	case res == nil:
		return &Result{DisplayName: DisplayNotFound}
	}
	return res
}
