package ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/testutils"
)

type stubSource struct {
	files   []FileInfo
	content map[string][]byte
	listErr error
}

func (s *stubSource) List(context.Context) ([]FileInfo, error) {
	return s.files, s.listErr
}

func (s *stubSource) Fetch(_ context.Context, path string) ([]byte, error) {
	raw, ok := s.content[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return raw, nil
}

type nullBus struct{}

func (nullBus) Publish(context.Context, domain.Event) error           { return nil }
func (nullBus) Subscribe(string, func(context.Context, domain.Event)) {}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedWidth places fields at column offsets on a padded line.
func fixedWidth(width int, fields map[int]string) string {
	buf := []byte(strings.Repeat(" ", width))
	for start, v := range fields {
		copy(buf[start:], v)
	}
	return string(buf)
}

func ccnFile(details ...string) []byte {
	lines := append([]string{"HR20250428"}, details...)
	lines = append(lines, "TR0000001")
	return []byte(strings.Join(lines, "\n") + "\n")
}

func ccnDetail(unique, date, amount string) string {
	return fixedWidth(278, map[int]string{
		0:   "DR",
		20:  date,
		83:  amount,
		111: "APR001",
		216: unique,
	})
}

func gz(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRunIngestsAndJournals(t *testing.T) {
	uow := testutils.NewFakeUoW()
	src := &stubSource{
		files: []FileInfo{{Name: "CCN_28042025_0001.dat.gz", Path: "in/ccn.gz", IsCompressed: true}},
		content: map[string][]byte{
			"in/ccn.gz": gz(t, ccnFile(
				ccnDetail("00000000000000000000000042", "250428", "0000000030205"),
				ccnDetail("00000000000000000000000043", "250428", "0000000010000"),
				"DR short junk",
			)),
		},
	}

	p := NewPipeline(uow, src, src, nullBus{}, discard())
	report, err := p.Run(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	res := report.Files[0]
	assert.Equal(t, "CCN_28042025_0001.dat", res.LogicalName, "archive suffix stripped")
	assert.Equal(t, dto.IngestProcessed, res.State)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped, "malformed line dropped, file continues")

	require.Len(t, uow.StagedTransactions, 2)
	assert.Equal(t, domain.StatusPending, uow.StagedTransactions[0].Status)
	assert.Equal(t, "42", uow.StagedTransactions[0].Coupon)
	assert.Equal(t, "CCN_28042025_0001.dat", uow.StagedTransactions[0].SourceFile)

	require.Len(t, uow.IngestEntries, 1)
	assert.Equal(t, dto.IngestProcessed, uow.IngestEntries[0].State)
	assert.Equal(t, 2, uow.IngestEntries[0].Inserted)
}

func TestRunOmitsLoggedNames(t *testing.T) {
	uow := testutils.NewFakeUoW()
	uow.IngestEntries = []dto.IngestLogEntry{
		{LogicalName: "CCN_28042025_0001.dat", State: dto.IngestProcessed, Inserted: 2},
	}
	// Same logical content arrives compressed this time.
	src := &stubSource{
		files:   []FileInfo{{Name: "CCN_28042025_0001.dat.gz", Path: "in/ccn.gz", IsCompressed: true}},
		content: map[string][]byte{"in/ccn.gz": gz(t, ccnFile(ccnDetail("42", "250428", "100")))},
	}

	p := NewPipeline(uow, src, src, nullBus{}, discard())
	report, err := p.Run(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, dto.IngestOmitted, report.Files[0].State)
	assert.Zero(t, report.Files[0].Inserted)
	assert.Empty(t, uow.StagedTransactions)
}

func TestRunContinuesPastFailedFiles(t *testing.T) {
	uow := testutils.NewFakeUoW()
	src := &stubSource{
		files: []FileInfo{
			{Name: "CCN_28042025_0001.dat", Path: "in/missing"},
			{Name: "CCN_29042025_0001.dat", Path: "in/good"},
		},
		content: map[string][]byte{
			"in/good": ccnFile(ccnDetail("00000000000000000000000077", "250429", "0000000000500")),
		},
	}

	p := NewPipeline(uow, src, src, nullBus{}, discard())
	report, err := p.Run(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, report.Files, 2)
	assert.Equal(t, dto.IngestFailed, report.Files[0].State)
	assert.Error(t, report.Files[0].Err)
	assert.Equal(t, dto.IngestProcessed, report.Files[1].State)
	assert.Equal(t, 1, report.Inserted)

	// The failure is journaled with the error text and a zero count.
	require.Len(t, uow.IngestEntries, 2)
	assert.Equal(t, dto.IngestFailed, uow.IngestEntries[0].State)
	assert.NotEmpty(t, uow.IngestEntries[0].Detail)
	assert.Zero(t, uow.IngestEntries[0].Inserted)
}

func TestRunRejectsMismatchedHeader(t *testing.T) {
	uow := testutils.NewFakeUoW()
	// An authorization file delivered under a settlement name.
	src := &stubSource{
		files:   []FileInfo{{Name: "LCN_28042025_0001.dat", Path: "in/lcn"}},
		content: map[string][]byte{"in/lcn": ccnFile(ccnDetail("42", "250428", "100"))},
	}

	p := NewPipeline(uow, src, src, nullBus{}, discard())
	report, err := p.Run(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, report.Files, 1)
	assert.Equal(t, dto.IngestFailed, report.Files[0].State)
	assert.Empty(t, uow.StagedTransactions)
	assert.Empty(t, uow.StagedLiquidations)
}

func TestRunFailsOnlyWhenListingFails(t *testing.T) {
	p := NewPipeline(testutils.NewFakeUoW(), &stubSource{listErr: errors.New("host down")}, &stubSource{}, nullBus{}, discard())
	_, err := p.Run(context.Background(), Filter{})
	assert.Error(t, err)
}

func TestPostStepsRunOncePerRunOnlyAfterInserts(t *testing.T) {
	uow := testutils.NewFakeUoW()
	src := &stubSource{
		files:   []FileInfo{{Name: "CCN_28042025_0001.dat", Path: "in/ccn"}},
		content: map[string][]byte{"in/ccn": ccnFile(ccnDetail("00000000000000000000000042", "250428", "100"))},
	}

	calls := 0
	failing := 0
	p := NewPipeline(uow, src, src, nullBus{}, discard(),
		PostStep{Name: "coupons", Run: func(context.Context) error { calls++; return nil }},
		PostStep{Name: "statuses", Run: func(context.Context) error { failing++; return errors.New("boom") }},
	)

	report, err := p.Run(context.Background(), Filter{})
	require.NoError(t, err, "a failing post step never fails the run")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, failing)
	assert.NoError(t, report.PostSteps["coupons"])
	assert.Error(t, report.PostSteps["statuses"])

	// Second run: everything omitted, nothing inserted, no post steps.
	report, err = p.Run(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Equal(t, 1, calls)
	assert.Empty(t, report.PostSteps)
}

func TestFilter(t *testing.T) {
	files := []FileInfo{
		{Name: "CCN_28042025_0001.dat"},
		{Name: "LCN_28042025_0001.dat"},
		{Name: "LDN_05052025_0001.dat.gz"},
		{Name: "resumen_28042025.txt"},
	}

	t.Run("family allow list", func(t *testing.T) {
		got := Filter{Families: []domain.Family{domain.FamilyDebit}}.Apply(files)
		require.Len(t, got, 1)
		assert.Equal(t, "LDN_05052025_0001.dat.gz", got[0].Name)
	})

	t.Run("date range", func(t *testing.T) {
		from := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
		got := Filter{From: from}.Apply(files)
		require.Len(t, got, 1)
		assert.Equal(t, "LDN_05052025_0001.dat.gz", got[0].Name)
	})

	t.Run("name filter wins over date range", func(t *testing.T) {
		from := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
		got := Filter{Names: []string{"LCN_28042025_0001.dat"}, From: from}.Apply(files)
		require.Len(t, got, 1)
		assert.Equal(t, "LCN_28042025_0001.dat", got[0].Name)
	})

	t.Run("name filter matches logical names", func(t *testing.T) {
		got := Filter{Names: []string{"LDN_05052025_0001.dat"}}.Apply(files)
		require.Len(t, got, 1)
		assert.Equal(t, "LDN_05052025_0001.dat.gz", got[0].Name)
	})
}
