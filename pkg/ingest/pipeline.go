// Package ingest runs the file ingestion pipeline: list, filter, skip
// already-processed names, decode, parse, batch-insert into staging, and
// trigger the post-ingest passes once per run.
package ingest

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/dto"
	"github.com/acquirex/reconcile/pkg/eventbus"
	"github.com/acquirex/reconcile/pkg/parser"
	"github.com/acquirex/reconcile/pkg/repository"
)

// PostStep is one best-effort pass run after a successful ingest. A
// failing step is recorded on the report; it never rolls back the
// committed inserts.
type PostStep struct {
	Name string
	Run  func(ctx context.Context) error
}

// FileResult is the outcome of one file in a run.
type FileResult struct {
	LogicalName string
	State       string // dto.IngestProcessed, IngestOmitted, IngestFailed
	Inserted    int
	Skipped     int // malformed lines dropped by the parser
	Err         error
}

// RunReport is the outcome of one ingestion run.
type RunReport struct {
	RunID     string
	Files     []FileResult
	Inserted  int
	PostSteps map[string]error
	StartedAt time.Time
}

// Pipeline ingests settlement and authorization files.
type Pipeline struct {
	uow    repository.UnitOfWork
	lister Lister
	fetch  Fetcher
	bus    eventbus.Bus
	log    *slog.Logger
	post   []PostStep
}

// NewPipeline wires an ingestion pipeline. Post steps run in order, at
// most once per run, only when at least one row was inserted.
func NewPipeline(uow repository.UnitOfWork, lister Lister, fetch Fetcher, bus eventbus.Bus, log *slog.Logger, post ...PostStep) *Pipeline {
	return &Pipeline{uow: uow, lister: lister, fetch: fetch, bus: bus, log: log.With("service", "ingest"), post: post}
}

// Run executes one ingestion run over the filtered listing. Only a
// listing failure fails the run; every per-file failure is recorded and
// the run moves on.
func (p *Pipeline) Run(ctx context.Context, filter Filter) (*RunReport, error) {
	report := &RunReport{
		RunID:     uuid.NewString(),
		PostSteps: map[string]error{},
		StartedAt: time.Now().UTC(),
	}
	log := p.log.With("run_id", report.RunID)

	files, err := p.lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing source files: %w", err)
	}
	selected := filter.Apply(files)
	log.Info("run started", "available", len(files), "selected", len(selected))

	for _, fi := range selected {
		res := p.ingestFile(ctx, report.RunID, fi)
		report.Files = append(report.Files, res)
		report.Inserted += res.Inserted
		if res.Err != nil {
			log.Error("file failed", "file", res.LogicalName, "error", res.Err)
		} else {
			log.Info("file done", "file", res.LogicalName, "state", res.State,
				"inserted", res.Inserted, "skipped", res.Skipped)
		}
	}

	if report.Inserted > 0 {
		for _, step := range p.post {
			if err := step.Run(ctx); err != nil {
				report.PostSteps[step.Name] = err
				log.Error("post step failed", "step", step.Name, "error", err)
				continue
			}
			report.PostSteps[step.Name] = nil
		}
	}

	failed := 0
	for _, f := range report.Files {
		if f.State == dto.IngestFailed {
			failed++
		}
	}
	if err := p.bus.Publish(ctx, domain.IngestionCompleted{
		RunID:     report.RunID,
		Files:     len(report.Files),
		Failed:    failed,
		Inserted:  report.Inserted,
		StartedAt: report.StartedAt,
	}); err != nil {
		log.Warn("publish failed", "event", "ingestion.completed", "error", err)
	}
	return report, nil
}

// ingestFile handles one file end to end. The batch insert and the
// journal entry share one transaction: either the whole file lands or
// none of it does.
func (p *Pipeline) ingestFile(ctx context.Context, runID string, fi FileInfo) FileResult {
	logical := LogicalName(fi.Name)
	res := FileResult{LogicalName: logical}

	done, err := p.uow.IngestLog().Processed(ctx, logical)
	if err != nil {
		return p.failed(ctx, runID, res, "", err)
	}
	if done {
		res.State = dto.IngestOmitted
		p.journal(ctx, runID, res, "")
		return res
	}

	fileType, err := parser.TypeFromName(logical)
	if err != nil {
		return p.failed(ctx, runID, res, "", err)
	}

	raw, err := p.fetch.Fetch(ctx, fi.Path)
	if err != nil {
		return p.failed(ctx, runID, res, fileType, err)
	}
	if fi.IsCompressed || strings.HasSuffix(fi.Name, ".gz") {
		if raw, err = gunzip(raw); err != nil {
			return p.failed(ctx, runID, res, fileType, err)
		}
	}

	// The header record is authoritative; a file whose header disagrees
	// with its name is rejected rather than parsed as the wrong family.
	headerType, err := parser.Detect(firstLine(raw), logical)
	if err != nil {
		return p.failed(ctx, runID, res, fileType, err)
	}
	if headerType != fileType {
		return p.failed(ctx, runID, res, fileType,
			fmt.Errorf("header identifies %s but the name says %s: %w", headerType, fileType, domain.ErrValidation))
	}

	now := time.Now().UTC()
	var transactions []dto.StagedTransaction
	var liquidations []dto.StagedLiquidation
	for _, line := range detailLines(raw) {
		rec, err := parser.Parse(fileType, line)
		if err != nil {
			res.Skipped++
			continue
		}
		if fileType.IsLiquidation() {
			if row, ok := stagedLiquidation(rec, logical, now); ok {
				liquidations = append(liquidations, row)
			}
		} else {
			if row, ok := stagedTransaction(rec, logical, now); ok {
				transactions = append(transactions, row)
			}
		}
	}

	err = p.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if len(transactions) > 0 {
			if err := uow.Transactions().BatchInsert(ctx, transactions); err != nil {
				return err
			}
		}
		if len(liquidations) > 0 {
			if err := uow.Liquidations().BatchInsert(ctx, liquidations); err != nil {
				return err
			}
		}
		res.Inserted = len(transactions) + len(liquidations)
		res.State = dto.IngestProcessed
		return uow.IngestLog().Record(ctx, dto.IngestLogEntry{
			RunID:       runID,
			LogicalName: logical,
			FileType:    fileType,
			State:       dto.IngestProcessed,
			Inserted:    res.Inserted,
			LoadedAt:    now,
		})
	})
	if err != nil {
		res.Inserted = 0
		return p.failed(ctx, runID, res, fileType, err)
	}
	return res
}

func (p *Pipeline) failed(ctx context.Context, runID string, res FileResult, fileType domain.FileType, err error) FileResult {
	res.State = dto.IngestFailed
	res.Err = err
	p.journal(ctx, runID, res, fileType)
	return res
}

// journal records a non-processed outcome outside the insert
// transaction. Failure entries carry the error text and a zero count.
func (p *Pipeline) journal(ctx context.Context, runID string, res FileResult, fileType domain.FileType) {
	detail := ""
	if res.Err != nil {
		detail = res.Err.Error()
	}
	entry := dto.IngestLogEntry{
		RunID:       runID,
		LogicalName: res.LogicalName,
		FileType:    fileType,
		State:       res.State,
		Detail:      detail,
		LoadedAt:    time.Now().UTC(),
	}
	if err := p.uow.IngestLog().Record(ctx, entry); err != nil {
		p.log.Error("journal write failed", "file", res.LogicalName, "error", err)
	}
}

func firstLine(raw []byte) string {
	line, _, _ := strings.Cut(string(raw), "\n")
	return strings.TrimRight(line, "\r")
}

// detailLines splits a file into lines and drops the header and trailer.
func detailLines(raw []byte) []string {
	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= 2 {
		return nil
	}
	return lines[1 : len(lines)-1]
}

func gunzip(raw []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("opening gzip stream: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing: %w", err)
	}
	return out, nil
}
