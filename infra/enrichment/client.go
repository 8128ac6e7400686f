// Package enrichment implements the customer lookup boundary over the
// acquirer's party HTTP API, with a circuit breaker so a degraded
// service cannot slow every ingestion run, and a cache in front so
// repeated passes skip the network entirely.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/acquirex/reconcile/config"
	"github.com/acquirex/reconcile/pkg/cache"
	"github.com/acquirex/reconcile/pkg/enrich"
)

// Client implements enrich.Lookup against the party API.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker
	cache    cache.LookupCache
	cacheTTL time.Duration
	log      *slog.Logger
}

// New builds a lookup client. lc may be nil to disable caching.
func New(cnf config.EnrichmentConfig, lc cache.LookupCache, log *slog.Logger) *Client {
	return &Client{
		baseURL: cnf.BaseUrl,
		apiKey:  cnf.ApiKey,
		http:    &http.Client{Timeout: cnf.HTTPTimeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "party-lookup",
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
		cache:    lc,
		cacheTTL: cnf.CacheTTL,
		log:      log.With("adapter", "enrichment"),
	}
}

type partyResponse struct {
	Name         string `json:"name"`
	DocumentType string `json:"documentType"`
}

// Lookup resolves one party identifier. A 404 means the identifier is
// unknown and returns (nil, nil); any transport or server failure is an
// error for the caller to degrade on.
func (c *Client) Lookup(ctx context.Context, identifier string) (*enrich.Result, error) {
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, identifier); err == nil && cached != nil {
			return cached, nil
		}
	}

	res, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, identifier)
	})
	if err != nil {
		return nil, err
	}
	result, _ := res.(*enrich.Result)
	if result != nil && c.cache != nil {
		if err := c.cache.Set(ctx, identifier, result, c.cacheTTL); err != nil {
			c.log.Warn("cache write failed", "identifier", identifier, "error", err)
		}
	}
	return result, nil
}

func (c *Client) fetch(ctx context.Context, identifier string) (*enrich.Result, error) {
	u := fmt.Sprintf("%s/parties/%s", c.baseURL, url.PathEscape(identifier))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("party lookup returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var party partyResponse
	if err := json.Unmarshal(raw, &party); err != nil {
		return nil, fmt.Errorf("decoding party response: %w", err)
	}
	return &enrich.Result{
		DisplayName:  party.Name,
		DocumentType: party.DocumentType,
		Payload:      string(raw),
	}, nil
}
