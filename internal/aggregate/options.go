// Package aggregate computes the dashboard, period reports, profit and loss
// and the archive of a period from a snapshot of source records. Every
// function is pure.
package aggregate

import (
	"strings"

	"github.com/Afatsiawu/FMS/internal/core"
)

// ChannelMode decides where tithe and offering money is counted from. The
// weekly ledger and flagged income rows can describe the same money, so the
// choice is left to configuration and never resolved by deduplication.
type ChannelMode string

const (
	// ChannelsAsRecorded counts what each view historically counted: the
	// dashboard sums both channels, reports count income rows, profit and
	// loss counts the ledger.
	ChannelsAsRecorded ChannelMode = "as-recorded"
	// ChannelsLedger takes tithe and offering money only from the ledger.
	ChannelsLedger ChannelMode = "ledger"
	// ChannelsIncome takes it only from flagged income rows.
	ChannelsIncome ChannelMode = "income"
)

// ParseChannelMode accepts the three mode names. Empty means as-recorded.
func ParseChannelMode(s string) (ChannelMode, error) {
	switch m := ChannelMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ChannelsAsRecorded, nil
	case ChannelsAsRecorded, ChannelsLedger, ChannelsIncome:
		return m, nil
	}
	return "", core.NewValidationError("tithe_channel_mode", "must be as-recorded, ledger or income")
}

// Options tune the aggregation.
type Options struct {
	Channels ChannelMode
}

type view int

const (
	dashboardView view = iota
	reportView
	profitLossView
)

// channels reports which tithe/offering channels a view counts.
type channels struct {
	incomeRows bool
	ledger     bool
}

func (o Options) channelsFor(v view) channels {
	switch o.Channels {
	case ChannelsLedger:
		return channels{ledger: true}
	case ChannelsIncome:
		return channels{incomeRows: true}
	}
	switch v {
	case dashboardView:
		return channels{incomeRows: true, ledger: true}
	case reportView:
		return channels{incomeRows: true}
	default:
		return channels{ledger: true}
	}
}

// inWindow treats an open range as matching every record, dated or not.
func inWindow(r core.DateRange, d core.Date) bool {
	return r.IsOpen() || r.Contains(d)
}

// ledgerGross is the record total, or the sum of its weeks when the stored
// total is zero.
func ledgerGross(r core.LedgerRecord) core.Money {
	if !r.Total.IsZero() {
		return r.Total
	}
	return r.Sum()
}

// ledgerWarnings flags records whose stored total disagrees with the weeks.
func ledgerWarnings(source string, records []core.LedgerRecord) []core.DataQualityWarning {
	var out []core.DataQualityWarning
	for _, r := range records {
		if !r.Total.IsZero() && r.Total != r.Sum() {
			out = append(out, core.DataQualityWarning{
				Source:   source,
				RecordID: r.ID,
				Field:    "total",
				Detail:   "stored total " + r.Total.String() + " differs from weeks " + r.Sum().String(),
			})
		}
	}
	return out
}

// categoryTotals keeps first-seen order of the categories.
type categoryTotals struct {
	order []string
	sums  map[string]core.Money
}

func newCategoryTotals() *categoryTotals {
	return &categoryTotals{sums: map[string]core.Money{}}
}

func (c *categoryTotals) add(name string, m core.Money) {
	if _, ok := c.sums[name]; !ok {
		c.order = append(c.order, name)
	}
	c.sums[name] = c.sums[name].Add(m)
}

func (c *categoryTotals) list() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, core.CategoryAmount{Name: name, Amount: c.sums[name]})
	}
	return out
}
