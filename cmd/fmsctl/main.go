// Command fmsctl reads a remote FMS server and prints the dashboard views,
// computing them locally from the raw lists.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/apiclient"
	"github.com/Afatsiawu/FMS/internal/cli"
	"github.com/Afatsiawu/FMS/internal/config"
	"github.com/Afatsiawu/FMS/internal/core"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
)

const usage = `usage: fmsctl [flags] <command> [args]

commands:
  dashboard [-date YYYY-MM-DD]
  report <weekly|monthly|yearly> [-date YYYY-MM-DD]
  pl -start YYYY-MM-DD -end YYYY-MM-DD
  feed [-limit N]
  month <0-11>
  district
  history [year]
`

func main() {
	cli.LoadEnvFile()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type app struct {
	client  *apiclient.Client
	reports *services.ReportService
	out     io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("fmsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	baseURL := fs.String("url", cfg.RemoteAPIURL, "FMS server URL")
	timeout := fs.Duration("timeout", cfg.RemoteTimeout, "per-request timeout, 0 for none")
	mode := fs.String("channels", cfg.TitheChannelMode, "tithe channel mode: as-recorded, ledger or income")
	verbose := fs.Bool("v", false, "log data quality warnings")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelWarn
	}
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentClient, Output: stderr})
	applog.SetDefault(logger)

	channels, err := aggregate.ParseChannelMode(*mode)
	if err != nil {
		fmt.Fprintf(stderr, "fmsctl: %v\n", err)
		return 2
	}
	client, err := apiclient.New(apiclient.Options{BaseURL: *baseURL, Timeout: *timeout, Logger: logger.Logger})
	if err != nil {
		fmt.Fprintf(stderr, "fmsctl: %v\n", err)
		return 2
	}
	a := &app{
		client:  client,
		reports: services.NewReportService(client, aggregate.Options{Channels: channels}, cfg.FeedLimit),
		out:     stdout,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	err = a.dispatch(ctx, cmd, rest)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "fmsctl: %v\n", err)
		fs.Usage()
		return 2
	}

	var netErr *core.NetworkError
	if errors.As(err, &netErr) {
		logger.Debug("Request failed", applog.FieldError, err)
		fmt.Fprintln(stderr, "fmsctl: could not load data from the server")
		fmt.Fprintf(stdout, "%s: error loading\n", cmd)
		return 1
	}
	fmt.Fprintf(stderr, "fmsctl: %v\n", err)
	return 1
}

var errUsage = errors.New("invalid usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "dashboard":
		return a.dashboard(ctx, args)
	case "report":
		return a.report(ctx, args)
	case "pl":
		return a.profitLoss(ctx, args)
	case "feed":
		return a.feed(ctx, args)
	case "month":
		return a.month(ctx, args)
	case "district":
		return a.district(ctx)
	case "history":
		return a.history(ctx, args)
	}
	return usageError("unknown command %q", cmd)
}

func dateFlag(fs *flag.FlagSet, name string) *string {
	return fs.String(name, "", "date as YYYY-MM-DD")
}

func parseOptionalDate(name, s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, usageError("-%s must be YYYY-MM-DD", name)
	}
	return d, nil
}

func subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := subFlags("dashboard")
	date := dateFlag(fs, "date")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	day, err := parseOptionalDate("date", *date)
	if err != nil {
		return err
	}
	totals, err := a.reports.Dashboard(ctx, day)
	if err != nil {
		return err
	}
	return renderDashboard(a.out, totals)
}

func (a *app) report(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("report needs a period")
	}
	period, err := aggregate.ParsePeriod(args[0])
	if err != nil {
		return usageError("%v", err)
	}
	fs := subFlags("report")
	date := dateFlag(fs, "date")
	if err := fs.Parse(args[1:]); err != nil {
		return usageError("%v", err)
	}
	anchor, err := parseOptionalDate("date", *date)
	if err != nil {
		return err
	}
	rep, err := a.reports.Report(ctx, period, anchor)
	if err != nil {
		return err
	}
	return renderReport(a.out, rep)
}

func (a *app) profitLoss(ctx context.Context, args []string) error {
	fs := subFlags("pl")
	start := dateFlag(fs, "start")
	end := dateFlag(fs, "end")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	var r core.DateRange
	var err error
	if r.Start, err = parseOptionalDate("start", *start); err != nil {
		return err
	}
	if r.End, err = parseOptionalDate("end", *end); err != nil {
		return err
	}
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start.Time) {
		return usageError("-end must not be before -start")
	}
	pl, err := a.reports.ProfitLoss(ctx, r)
	if err != nil {
		return err
	}
	return renderProfitLoss(a.out, pl)
}

func (a *app) feed(ctx context.Context, args []string) error {
	fs := subFlags("feed")
	limit := fs.Int("limit", 0, "number of transactions")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if *limit < 0 {
		return usageError("-limit must not be negative")
	}
	txs, err := a.reports.Transactions(ctx, *limit)
	if err != nil {
		return err
	}
	return renderFeed(a.out, txs)
}

func (a *app) month(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("month needs a month number")
	}
	m, err := strconv.Atoi(args[0])
	if err != nil || !core.ValidMonth(m) {
		return usageError("month must be 0-11")
	}
	view, err := a.reports.MonthView(ctx, m)
	if err != nil {
		return err
	}
	return renderMonth(a.out, view)
}

func (a *app) district(ctx context.Context) error {
	entries, err := a.reports.DistrictLedger(ctx)
	if err != nil {
		return err
	}
	return renderDistrict(a.out, entries)
}

func (a *app) history(ctx context.Context, args []string) error {
	if len(args) == 0 {
		years, err := a.client.HistoricalYears(ctx)
		if err != nil {
			return err
		}
		return renderYears(a.out, years)
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError("year must be a number")
	}
	ap, err := a.client.HistoricalPeriod(ctx, year)
	if err != nil {
		return err
	}
	return renderArchive(a.out, ap)
}
