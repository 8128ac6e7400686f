package enrichment

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquirex/reconcile/config"
	infracache "github.com/acquirex/reconcile/infra/cache"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server, *infracache.MemoryCache) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	mc := infracache.NewMemoryCache()
	c := New(config.EnrichmentConfig{
		BaseUrl:     srv.URL,
		HTTPTimeout: time.Second,
		CacheTTL:    time.Minute,
	}, mc, discard())
	return c, srv, mc
}

func TestLookup(t *testing.T) {
	hits := 0
	c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "/parties/11111111", r.URL.Path)
		w.Write([]byte(`{"name":"ACME LTDA","documentType":"RUT"}`))
	})

	res, err := c.Lookup(context.Background(), "11111111")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ACME LTDA", res.DisplayName)
	assert.Equal(t, "RUT", res.DocumentType)
	assert.JSONEq(t, `{"name":"ACME LTDA","documentType":"RUT"}`, res.Payload)

	// Second call is served from cache.
	_, err = c.Lookup(context.Background(), "11111111")
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestLookupUnknownParty(t *testing.T) {
	c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	res, err := c.Lookup(context.Background(), "99999999")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestLookupServerError(t *testing.T) {
	c, _, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Lookup(context.Background(), "11111111")
	assert.Error(t, err)
}
