// Package apiclient reads the records of a remote FMS server over its JSON
// API. It satisfies store.Reader, so every view can be computed locally
// from a remote store.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/wire"
)

const userAgent = "fmsctl/1"

type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

var (
	_ store.Reader         = (*Client)(nil)
	_ store.SnapshotSource = (*Client)(nil)
)

func New(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("missing REMOTE_API_URL")
	}
	base, err := url.Parse(raw)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid remote API URL %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "client")
	}
	return &Client{base: base, http: hc, logger: logger}, nil
}

// getJSON fetches path and decodes the body into dst. Transport failures
// and non-200 answers become a *core.NetworkError; a 404 also matches
// core.ErrNotFound.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	u := c.base.JoinPath(path)
	u.RawQuery = query.Encode()
	target := u.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &core.NetworkError{Op: "GET", URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &core.NetworkError{Op: "GET", URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		nerr := &core.NetworkError{Op: "GET", URL: target, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotFound {
			nerr.Err = core.ErrNotFound
		}
		return nerr
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &core.NetworkError{Op: "GET", URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func monthQuery(month int) url.Values {
	q := url.Values{}
	if month != store.AllMonths {
		q.Set("month", strconv.Itoa(month))
	}
	return q
}

func (c *Client) listIncome(ctx context.Context, d *wire.Decoder, f store.IncomeFilter) ([]core.Income, error) {
	q := url.Values{}
	if !f.Range.Start.IsZero() {
		q.Set("start_date", f.Range.Start.String())
	}
	if !f.Range.End.IsZero() {
		q.Set("end_date", f.Range.End.String())
	}
	if f.Kind != nil {
		q.Set("is_tithe", strconv.FormatBool(*f.Kind == core.TitheIncome))
		q.Set("is_offering", strconv.FormatBool(*f.Kind == core.OfferingIncome))
	}
	var list wire.IncomeList
	if err := c.getJSON(ctx, "/api/income", q, &list); err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(list.Data))
	for _, w := range list.Data {
		out = append(out, d.Income(w))
	}
	return out, nil
}

func (c *Client) listTithes(ctx context.Context, d *wire.Decoder, month int) ([]core.LedgerRecord, error) {
	var list wire.TitheList
	if err := c.getJSON(ctx, "/api/tithes", monthQuery(month), &list); err != nil {
		return nil, err
	}
	out := make([]core.LedgerRecord, 0, len(list.Data))
	for _, w := range list.Data {
		out = append(out, d.Tithe(w))
	}
	return out, nil
}

func (c *Client) listOfferings(ctx context.Context, d *wire.Decoder, month int) ([]core.LedgerRecord, error) {
	var rows []wire.Offering
	if err := c.getJSON(ctx, "/api/offerings", monthQuery(month), &rows); err != nil {
		return nil, err
	}
	out := make([]core.LedgerRecord, 0, len(rows))
	for _, w := range rows {
		out = append(out, d.Offering(w))
	}
	return out, nil
}

func (c *Client) listTier(ctx context.Context, d *wire.Decoder, tier core.ExpenseTier) ([]core.Expense, error) {
	var rows []wire.Expense
	if err := c.getJSON(ctx, "/api/expenses", url.Values{"type": {string(tier)}}, &rows); err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for _, w := range rows {
		out = append(out, d.Expense(w, tier))
	}
	return out, nil
}

func (c *Client) listAuto(ctx context.Context, d *wire.Decoder) ([]core.AutoDistrictExpense, error) {
	var rows []wire.DistrictExpense
	if err := c.getJSON(ctx, "/api/district-expenses", nil, &rows); err != nil {
		return nil, err
	}
	out := make([]core.AutoDistrictExpense, 0, len(rows))
	for _, w := range rows {
		out = append(out, d.DistrictExpense(w))
	}
	return out, nil
}

var allTiers = []core.ExpenseTier{core.LocalExpense, core.DistrictExpense, core.NationalExpense}

// warn logs what d collected on a single list call.
func (c *Client) warn(d *wire.Decoder) {
	core.LogWarnings(c.logger, d.Warnings)
}

func (c *Client) ListIncome(ctx context.Context, f store.IncomeFilter) ([]core.Income, error) {
	var d wire.Decoder
	defer c.warn(&d)
	return c.listIncome(ctx, &d, f)
}

func (c *Client) ListTithes(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	var d wire.Decoder
	defer c.warn(&d)
	return c.listTithes(ctx, &d, month)
}

func (c *Client) ListOfferings(ctx context.Context, month int) ([]core.LedgerRecord, error) {
	var d wire.Decoder
	defer c.warn(&d)
	return c.listOfferings(ctx, &d, month)
}

// ListExpenses fetches one tier, or all three in turn when tier is empty.
func (c *Client) ListExpenses(ctx context.Context, tier core.ExpenseTier) ([]core.Expense, error) {
	var d wire.Decoder
	defer c.warn(&d)
	if tier != "" {
		return c.listTier(ctx, &d, tier)
	}
	var out []core.Expense
	for _, t := range allTiers {
		rows, err := c.listTier(ctx, &d, t)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (c *Client) ListAutoDistrict(ctx context.Context) ([]core.AutoDistrictExpense, error) {
	var d wire.Decoder
	defer c.warn(&d)
	return c.listAuto(ctx, &d)
}

// Snapshot fetches every source list concurrently. Each call decodes with
// its own Decoder; the warnings come back on the snapshot instead of being
// logged here.
func (c *Client) Snapshot(ctx context.Context) (core.Snapshot, error) {
	var (
		snap     core.Snapshot
		decoders [7]wire.Decoder
		tiers    [3][]core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Income, err = c.listIncome(gctx, &decoders[0], store.IncomeFilter{})
		return wrap("income", err)
	})
	g.Go(func() (err error) {
		snap.Tithes, err = c.listTithes(gctx, &decoders[1], store.AllMonths)
		return wrap("tithes", err)
	})
	g.Go(func() (err error) {
		snap.Offerings, err = c.listOfferings(gctx, &decoders[2], store.AllMonths)
		return wrap("offerings", err)
	})
	g.Go(func() (err error) {
		snap.AutoDistrict, err = c.listAuto(gctx, &decoders[3])
		return wrap("district expenses", err)
	})
	for i, tier := range allTiers {
		g.Go(func() (err error) {
			tiers[i], err = c.listTier(gctx, &decoders[4+i], tier)
			return wrap(string(tier)+" expenses", err)
		})
	}
	if err := g.Wait(); err != nil {
		return core.Snapshot{}, err
	}

	for _, t := range tiers {
		snap.Expenses = append(snap.Expenses, t...)
	}
	for i := range decoders {
		snap.Warnings = append(snap.Warnings, decoders[i].Warnings...)
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return nil
}

func (c *Client) HistoricalYears(ctx context.Context) ([]int, error) {
	var out wire.HistoricalYears
	if err := c.getJSON(ctx, "/api/historical-years", nil, &out); err != nil {
		return nil, err
	}
	if out.Years == nil {
		return []int{}, nil
	}
	return out.Years, nil
}

func (c *Client) HistoricalPeriod(ctx context.Context, year int) (core.ArchivedPeriod, error) {
	var h wire.HistoricalData
	if err := c.getJSON(ctx, "/api/historical-data/"+strconv.Itoa(year), nil, &h); err != nil {
		return core.ArchivedPeriod{}, err
	}
	var d wire.Decoder
	defer c.warn(&d)
	ap := d.ArchivedPeriod(h)
	if ap.Year == 0 {
		ap.Year = year
	}
	return ap, nil
}
