package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Afatsiawu/FMS/internal/aggregate"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/export"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/wire"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	day, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	totals, err := s.reports.Dashboard(r.Context(), day)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.FromDailyTotals(totals)).Write(w)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	period, err := aggregate.ParsePeriod(r.PathValue("period"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	anchor, err := queryDate(r, "date")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	report, err := s.reports.Report(r.Context(), period, anchor)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.FromReport(report)).Write(w)
}

func (s *Server) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start_date")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	end, err := queryDate(r, "end_date")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		writeError(w, r, applog.OpRead, core.NewValidationError("end_date", "must not be before start_date"))
		return
	}
	pl, err := s.reports.ProfitLoss(r.Context(), core.DateRange{Start: start, End: end})
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.FromProfitLoss(pl)).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	rows, err := s.reports.Transactions(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.FromTransactions(rows)).Write(w)
}

// handleExport renders the workbook into a buffer first so a failure can
// still be answered with a JSON error.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.reports.Export(r.Context(), &buf); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	name := fmt.Sprintf("church-finance-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusNotImplemented, "PDF export is not available, use /api/export").Write(w)
}

func (s *Server) handleYearReset(w http.ResponseWriter, r *http.Request) {
	var req wire.YearResetRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpArchive, err)
		return
	}
	archived, err := s.periods.YearReset(r.Context(), req.Year)
	if err != nil {
		writeError(w, r, applog.OpArchive, err)
		return
	}

	NewJSONResponse().
		RefreshFinancials(ViewIncome, ViewTithes, ViewOfferings, ViewExpenses, ViewDistrict, ViewHistory).
		Payload(wire.MessageResponse{
			Success: true,
			Message: fmt.Sprintf("Year %d archived and reset", archived.Year),
		}).
		Write(w)
}

func (s *Server) handleHistoricalYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.periods.HistoricalYears(r.Context())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.HistoricalYears{Years: years}).Write(w)
}

func (s *Server) handleHistoricalData(w http.ResponseWriter, r *http.Request) {
	year, err := pathInt(r, "year")
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	ap, err := s.periods.HistoricalPeriod(r.Context(), year)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	NewJSONResponse().Payload(wire.FromArchivedPeriod(ap)).Write(w)
}
