package http

import (
	"net/http"

	"github.com/Afatsiawu/FMS/internal/allocation"
	"github.com/Afatsiawu/FMS/internal/core"
	"github.com/Afatsiawu/FMS/internal/ledger"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/services"
	"github.com/Afatsiawu/FMS/internal/store"
	"github.com/Afatsiawu/FMS/internal/wire"
)

func (s *Server) handleListIncome(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start_date")
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	end, err := queryDate(r, "end_date")
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	kind, err := incomeKindFilter(r)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	rows, err := s.finance.ListIncome(r.Context(), store.IncomeFilter{
		Range: core.DateRange{Start: start, End: end},
		Kind:  kind,
	})
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Payload(wire.NewIncomeList(rows)).Write(w)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateIncomeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	kind, err := core.KindFromFlags(req.IsTithe, req.IsOffering)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	date, err := bodyDate("date", req.Date)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	stored, err := s.finance.CreateIncome(r.Context(), core.Income{
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount.Money(),
		Date:        date,
		Kind:        kind,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Income recorded",
		applog.NewFields().WithIncome(stored.ID, stored.Kind.String(), stored.Amount.Cents).ToSlice()...)

	split := allocation.ForIncome(stored)
	NewJSONResponse().
		Status(http.StatusCreated).
		RefreshFinancials(ViewIncome, ViewDistrict).
		Payload(wire.CreateIncomeResponse{
			Success:        true,
			ID:             stored.ID,
			LocalAmount:    wire.AmountOf(split.Local),
			DistrictAmount: wire.AmountOf(split.District),
		}).
		Write(w)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.finance.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().
		RefreshFinancials(ViewIncome, ViewDistrict).
		Payload(wire.MessageResponse{Success: true, Message: "Income deleted"}).
		Write(w)
}

func (s *Server) handleListTithes(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	rows, err := s.finance.ListTithes(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Payload(wire.NewTitheList(rows)).Write(w)
}

func (s *Server) handleRecordTithe(w http.ResponseWriter, r *http.Request) {
	var req wire.TitheRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	posting, err := s.finance.RecordTithe(r.Context(), ledger.Entry{
		MemberID:   sanitizeInput(req.MemberID),
		MemberName: sanitizeInput(req.MemberName),
		Month:      *req.Month,
		Week:       req.Week,
		Amount:     req.Amount.Money(),
	})
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Tithe week recorded",
		applog.NewFields().WithLedgerWeek(posting.Record.MemberID, posting.Record.Month, req.Week).ToSlice()...)

	writeLedgerPosting(w, posting, ViewTithes)
}

func (s *Server) handleDeleteTithe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.finance.DeleteTithe(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().
		RefreshFinancials(ViewTithes, ViewIncome, ViewDistrict).
		Payload(wire.MessageResponse{Success: true, Message: "Tithe deleted"}).
		Write(w)
}

func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	month, err := pathInt(r, "month")
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	view, err := s.reports.MonthView(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	NewJSONResponse().Payload(wire.FromMonthView(view)).Write(w)
}

func (s *Server) handleListOfferings(w http.ResponseWriter, r *http.Request) {
	month, err := queryMonth(r)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	rows, err := s.finance.ListOfferings(r.Context(), month)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]wire.Offering, 0, len(rows))
	for _, rec := range rows {
		out = append(out, wire.FromOffering(rec))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleRecordOffering(w http.ResponseWriter, r *http.Request) {
	var req wire.OfferingRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}
	posting, err := s.finance.RecordOffering(r.Context(), services.OfferingEntry{
		MemberName: sanitizeInput(req.MemberName),
		MemberID:   sanitizeInput(req.MemberID),
		Month:      *req.Month,
		Week:       req.Week,
		Amount:     req.Amount.Money(),
	})
	if err != nil {
		writeError(w, r, applog.OpUpsert, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Offering week recorded",
		applog.NewFields().WithLedgerWeek(posting.Record.MemberID, posting.Record.Month, req.Week).ToSlice()...)

	writeLedgerPosting(w, posting, ViewOfferings)
}

func (s *Server) handleDeleteOffering(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.finance.DeleteOffering(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().
		RefreshFinancials(ViewOfferings, ViewIncome, ViewDistrict).
		Payload(wire.MessageResponse{Success: true, Message: "Offering deleted"}).
		Write(w)
}

func writeLedgerPosting(w http.ResponseWriter, p services.LedgerPosting, view string) {
	NewJSONResponse().
		RefreshFinancials(view, ViewIncome, ViewDistrict).
		Payload(wire.LedgerResponse{
			Success:        true,
			ID:             p.Record.ID,
			IncomeID:       p.Income.ID,
			Total:          wire.AmountOf(p.Record.Total),
			LocalAmount:    wire.AmountOf(p.Split.Local),
			DistrictAmount: wire.AmountOf(p.Split.District),
		}).
		Write(w)
}
