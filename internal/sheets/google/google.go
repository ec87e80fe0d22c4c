package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Afatsiawu/FMS/internal/core"
	ports "github.com/Afatsiawu/FMS/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultArchiveSheet is the tab base name; the year is prefixed.
const DefaultArchiveSheet = "Archive"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	archiveBase   string
}

var _ ports.ArchiveWriter = (*Client)(nil)

// Options configure the archive mirror. One of ServiceAccountJSON or
// ServiceAccountFile is required; GOOGLE_APPLICATION_CREDENTIALS is the
// fallback for the file.
type Options struct {
	SpreadsheetID      string
	ArchiveSheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.ArchiveSheet)
	if base == "" {
		base = DefaultArchiveSheet
	}

	credentials, err := loadCredentials(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentials),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets archive mirror ready",
		"spreadsheet_id", spreadsheetID,
		"sheet_base", base)
	return &Client{svc: svc, spreadsheetID: spreadsheetID, archiveBase: base}, nil
}

func loadCredentials(ctx context.Context, opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.ServiceAccountJSON)
	file := strings.TrimSpace(opts.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// newHTTPClientWithPooling keeps connections to the Sheets API warm.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// WriteArchive writes ap to the "<year> <base>" tab, creating it when
// missing and overwriting its previous contents.
func (c *Client) WriteArchive(ctx context.Context, ap core.ArchivedPeriod) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	sheetName := yearPrefixedName(c.archiveBase, ap.Year)

	if err := c.ensureSheet(ctx, sheetName); err != nil {
		return "", err
	}

	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheetName, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", sheetName, err)
	}

	rng := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: archiveRows(ap)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update %s: %w", sheetName, err)
	}

	slog.InfoContext(ctx, "Archive mirrored to Google Sheets",
		"sheet", sheetName,
		"rows", len(vr.Values))
	return sheetName, nil
}

func (c *Client) ensureSheet(ctx context.Context, name string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == name {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	return nil
}

// archiveRows lays out the profit and loss summary followed by the
// transaction list.
func archiveRows(ap core.ArchivedPeriod) [][]any {
	rows := [][]any{
		{"Profit and Loss", ap.Year},
		{"Archived at", ap.ArchivedAt.UTC().Format(time.RFC3339)},
		{},
		{"Revenue"},
	}
	for _, c := range ap.Revenue {
		rows = append(rows, []any{c.Name, c.Amount.Cedis()})
	}
	rows = append(rows, []any{"Total Revenue", ap.TotalRevenue().Cedis()}, []any{}, []any{"Expenses"})
	for _, c := range ap.Expenses {
		rows = append(rows, []any{c.Name, c.Amount.Cedis()})
	}
	net := ap.TotalRevenue().Sub(ap.TotalExpenses())
	rows = append(rows,
		[]any{"Total Expenses", ap.TotalExpenses().Cedis()},
		[]any{"Net", net.Cedis()},
		[]any{},
		[]any{"Date", "Type", "Category", "Description", "Amount"},
	)
	for _, t := range ap.Transactions {
		date := t.Date.String()
		if date == "" {
			date = "N/A"
		}
		rows = append(rows, []any{date, t.Type, t.Category, t.Description, t.Amount.Cedis()})
	}
	return rows
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
