package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/acquirex/reconcile/config"
	"github.com/acquirex/reconcile/infra"
	infracache "github.com/acquirex/reconcile/infra/cache"
	"github.com/acquirex/reconcile/infra/enrichment"
	infraeventbus "github.com/acquirex/reconcile/infra/eventbus"
	"github.com/acquirex/reconcile/infra/initializer"
	"github.com/acquirex/reconcile/infra/localsource"
	infrarepo "github.com/acquirex/reconcile/infra/repository"
	"github.com/acquirex/reconcile/infra/sftpsource"
	"github.com/acquirex/reconcile/pkg/cache"
	"github.com/acquirex/reconcile/pkg/coupon"
	"github.com/acquirex/reconcile/pkg/domain"
	"github.com/acquirex/reconcile/pkg/enrich"
	"github.com/acquirex/reconcile/pkg/ingest"
	"github.com/acquirex/reconcile/pkg/lifecycle"
	"github.com/acquirex/reconcile/pkg/match"
	"github.com/acquirex/reconcile/pkg/statement"
)

func usage() {
	fmt.Println("Usage: reconcile <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  migrate                                create or update the schema")
	fmt.Println("  ingest [from DDMMYYYY] [to DDMMYYYY]   run one ingestion pass")
	fmt.Println("  ingest file <name>                     ingest one file by name")
	fmt.Println("  settle <credit|debit> <RRMMDD> <actor> close one date to accounting")
	fmt.Println("  reprocess <record-id>                  re-match one staged record")
	fmt.Println("  status <credit|debit>                  staged status summary")
	fmt.Println("  statement <credit|debit> [file]        settlement statement")
	fmt.Println("  pending <credit|debit> <DDMMYYYY>      pending balance as of a date")
	fmt.Println("  daemon                                 run the daily scheduler")
}

func parseFamily(arg string) (domain.Family, error) {
	switch strings.ToLower(arg) {
	case "credit":
		return domain.FamilyCredit, nil
	case "debit":
		return domain.FamilyDebit, nil
	}
	return "", fmt.Errorf("unknown family %q, want credit or debit", arg)
}

// app holds the wired services behind the CLI commands.
type app struct {
	cfg       *config.AppConfig
	log       *slog.Logger
	pipeline  *ingest.Pipeline
	lifecycle *lifecycle.Manager
	statement *statement.Service
}

func buildApp(cfg *config.AppConfig, log *slog.Logger) (*app, func(), error) {
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return nil, nil, err
	}
	uow := infrarepo.NewUoW(db)
	bus := infraeventbus.NewMemoryBus()
	for _, eventType := range []string{domain.IngestionCompleted{}.Type(), domain.BatchSentToAccounting{}.Type()} {
		bus.Subscribe(eventType, func(_ context.Context, e domain.Event) {
			log.Info("event", "type", e.Type(), "payload", e)
		})
	}

	var lookupCache cache.LookupCache = infracache.NewMemoryCache()
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing redis url: %w", err)
		}
		lookupCache = infracache.NewRedisCache(opt, cfg.Enrichment.CachePrefix, log)
	}

	var source interface {
		ingest.Lister
		ingest.Fetcher
	}
	cleanup := func() {}
	switch cfg.Source.Kind {
	case "sftp":
		sftpSrc, err := sftpsource.Connect(cfg.Source)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { sftpSrc.Close() }
		source = sftpSrc
	default:
		source = localsource.New(cfg.Source.Dir)
	}

	coupons := coupon.NewService(uow, log)
	manager := lifecycle.NewManager(uow, bus, log)
	enricher := enrich.NewService(uow,
		enrichment.New(cfg.Enrichment, lookupCache, log),
		log, cfg.Enrichment.HTTPTimeout, cfg.Enrichment.BatchLimit)

	pipeline := ingest.NewPipeline(uow, source, source, bus, log,
		ingest.PostStep{Name: "coupons", Run: func(ctx context.Context) error {
			_, err := coupons.Resolve(ctx)
			return err
		}},
		ingest.PostStep{Name: "statuses", Run: func(ctx context.Context) error {
			for _, family := range []domain.Family{domain.FamilyCredit, domain.FamilyDebit} {
				if _, _, err := manager.RefreshStatuses(ctx, family); err != nil {
					return err
				}
			}
			return nil
		}},
		ingest.PostStep{Name: "enrichment", Run: enricher.Run},
	)

	return &app{
		cfg:       cfg,
		log:       log,
		pipeline:  pipeline,
		lifecycle: manager,
		statement: statement.NewService(uow, log),
	}, cleanup, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	log := initializer.SetupLogger(config.LogConfig{Format: "text", TimeFormat: "15:04:05", Prefix: "reconcile"})
	cfg, err := config.LoadAppConfig(log)
	if err != nil {
		color.Red("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	log = initializer.SetupLogger(cfg.Log)

	ctx := context.Background()
	cmd := os.Args[1]

	if cmd == "migrate" {
		db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			color.Red("Failed to connect to database: %v", err)
			os.Exit(1)
		}
		if err := infrarepo.Migrate(db); err != nil {
			color.Red("Migration failed: %v", err)
			os.Exit(1)
		}
		color.Green("Schema up to date")
		return
	}

	a, cleanup, err := buildApp(cfg, log)
	if err != nil {
		color.Red("Startup failed: %v", err)
		os.Exit(1)
	}
	defer cleanup()

	switch cmd {
	case "ingest":
		runIngest(ctx, a, os.Args[2:])
	case "settle":
		runSettle(ctx, a, os.Args[2:])
	case "reprocess":
		runReprocess(ctx, a, os.Args[2:])
	case "status":
		runStatus(ctx, a, os.Args[2:])
	case "statement":
		runStatement(ctx, a, os.Args[2:])
	case "pending":
		runPending(ctx, a, os.Args[2:])
	case "daemon":
		runDaemon(ctx, a)
	default:
		fmt.Println("Unknown command:", cmd)
		usage()
		os.Exit(1)
	}
}

func parseDay(arg string) (time.Time, error) {
	day, ok := match.DayDDMMYYYY(arg)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q, want DDMMYYYY", arg)
	}
	return day, nil
}

func runIngest(ctx context.Context, a *app, args []string) {
	var filter ingest.Filter
	if len(args) >= 2 && args[0] == "file" {
		filter.Names = args[1:]
	} else if len(args) >= 1 {
		from, err := parseDay(args[0])
		if err != nil {
			color.Red("%v", err)
			os.Exit(1)
		}
		filter.From = from
		if len(args) >= 2 {
			to, err := parseDay(args[1])
			if err != nil {
				color.Red("%v", err)
				os.Exit(1)
			}
			filter.To = to
		}
	}

	report, err := a.pipeline.Run(ctx, filter)
	if err != nil {
		color.Red("Ingestion run failed: %v", err)
		os.Exit(1)
	}
	for _, f := range report.Files {
		switch f.State {
		case "failed":
			color.Red("  %s: failed (%v)", f.LogicalName, f.Err)
		case "omitted":
			color.Yellow("  %s: omitted (already ingested)", f.LogicalName)
		default:
			color.Green("  %s: %d rows", f.LogicalName, f.Inserted)
		}
	}
	fmt.Printf("Run %s: %d files, %d rows inserted\n", report.RunID, len(report.Files), report.Inserted)
	for step, err := range report.PostSteps {
		if err != nil {
			color.Yellow("  post step %s failed: %v", step, err)
		}
	}
}

func runSettle(ctx context.Context, a *app, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: settle <credit|debit> <RRMMDD> [actor]")
		os.Exit(1)
	}
	family, err := parseFamily(args[0])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	actor := a.cfg.Actor
	if len(args) >= 3 {
		actor = args[2]
	}

	res, err := a.lifecycle.SendToAccounting(ctx, family, args[1], actor)
	if err != nil {
		var blocked *lifecycle.BlockedError
		if errors.As(err, &blocked) {
			color.Red("Refused: date %s still has unresolved %s records; close it first",
				blocked.BlockingDate, strings.ToLower(string(blocked.Family)))
			os.Exit(1)
		}
		color.Red("Close failed: %v", err)
		os.Exit(1)
	}
	color.Green("Closed %d records for %s on %s (daily total %d)",
		res.Records, strings.ToLower(string(res.Family)), res.BatchDate, res.DailyTotal)
}

func runReprocess(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: reprocess <record-id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		color.Red("Invalid record id: %v", err)
		os.Exit(1)
	}

	out, err := a.lifecycle.Reprocess(ctx, id)
	if err != nil {
		color.Red("Reprocess failed: %v", err)
		os.Exit(1)
	}
	if out.Matched {
		color.Green("Record %d (%s): %s -> %s, %s", out.RecordID, out.Coupon, out.Previous, out.Status, out.Detail)
	} else {
		color.Yellow("Record %d (%s): %s -> %s", out.RecordID, out.Coupon, out.Previous, out.Status)
	}
}

func runStatus(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: status <credit|debit>")
		os.Exit(1)
	}
	family, err := parseFamily(args[0])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}

	counts, err := a.statement.StatusSummary(ctx, family)
	if err != nil {
		color.Red("Summary failed: %v", err)
		os.Exit(1)
	}
	for _, c := range counts {
		fmt.Printf("  %s  %-10s %6d\n", c.Date, c.Status, c.Count)
	}
}

func runStatement(ctx context.Context, a *app, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: statement <credit|debit> [file]")
		os.Exit(1)
	}
	family, err := parseFamily(args[0])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	sourceFile := ""
	if len(args) >= 2 {
		sourceFile = args[1]
	}

	st, err := a.statement.Build(ctx, family, sourceFile)
	if err != nil {
		color.Red("Statement failed: %v", err)
		os.Exit(1)
	}
	matched := 0
	for _, line := range st.Lines {
		if line.Valid {
			matched++
		}
	}
	fmt.Printf("%d settlement lines, %d matched\n", len(st.Lines), matched)
	for _, tot := range st.Totals {
		fmt.Printf("  %-10s %6d lines  amount %12d  commission %10d  gross %10d\n",
			tot.CommerceCode, tot.Records, tot.Amount, tot.CommissionCents, tot.GrossCents)
	}
}

func runPending(ctx context.Context, a *app, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: pending <credit|debit> <DDMMYYYY>")
		os.Exit(1)
	}
	family, err := parseFamily(args[0])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
	cutoff, err := parseDay(args[1])
	if err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}

	entries, err := a.statement.PendingBalance(ctx, family, cutoff)
	if err != nil {
		color.Red("Pending balance failed: %v", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		color.Green("Nothing outstanding as of %s", args[1])
		return
	}
	for _, e := range entries {
		fmt.Printf("  %-10s %6d lines  outstanding %12d\n", e.CommerceCode, e.Lines, e.Outstanding)
	}
}
