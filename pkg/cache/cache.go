// Package cache defines the interface for caching enrichment lookups.
package cache

import (
	"context"
	"time"

	"github.com/acquirex/reconcile/pkg/enrich"
)

// LookupCache caches enrichment results keyed by customer identifier so
// repeated passes do not hit the external service for the same party.
type LookupCache interface {
	Get(ctx context.Context, key string) (*enrich.Result, error)
	Set(ctx context.Context, key string, r *enrich.Result, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
