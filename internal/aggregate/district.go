package aggregate

import (
	"sort"

	"github.com/Afatsiawu/FMS/internal/core"
)

// DistrictLedger merges the manual district expenses with the auto
// allocation stream, newest first. Manual entries come first on equal dates.
func DistrictLedger(s core.Snapshot) []core.DistrictLedgerEntry {
	var out []core.DistrictLedgerEntry
	for _, e := range s.ExpensesOf(core.DistrictExpense) {
		desc := e.Description
		if desc == "" {
			desc = e.Category
		}
		out = append(out, core.DistrictLedgerEntry{
			ID:          e.ID,
			Date:        e.Date,
			Description: desc,
			Amount:      e.Amount,
			Status:      core.StatusCompleted,
		})
	}
	for _, a := range s.AutoDistrict {
		desc := a.Description
		if desc == "" {
			desc = a.Source
		}
		status := a.Status
		if status == "" {
			status = core.StatusPending
		}
		out = append(out, core.DistrictLedgerEntry{
			ID:          a.ID,
			Date:        a.Date,
			Description: desc,
			Amount:      a.DistrictAmount,
			Status:      status,
			IsAuto:      true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.String() > out[j].Date.String() })
	return out
}
