package http

import (
	"net/http"

	"github.com/Afatsiawu/FMS/internal/core"
	applog "github.com/Afatsiawu/FMS/internal/log"
	"github.com/Afatsiawu/FMS/internal/wire"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	tier, err := core.ParseExpenseTier(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	s.writeExpenses(w, r, tier)
}

func (s *Server) handleNationalExpenses(w http.ResponseWriter, r *http.Request) {
	s.writeExpenses(w, r, core.NationalExpense)
}

func (s *Server) writeExpenses(w http.ResponseWriter, r *http.Request, tier core.ExpenseTier) {
	rows, err := s.finance.ListExpenses(r.Context(), tier)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]wire.Expense, 0, len(rows))
	for _, e := range rows {
		out = append(out, wire.FromExpense(e))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateExpenseRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	tier, err := core.ParseExpenseTier(req.ExpenseType)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	date, err := bodyDate("date", req.Date)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	stored, err := s.finance.CreateExpense(r.Context(), core.Expense{
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount.Money(),
		Date:        date,
		Tier:        tier,
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		RefreshFinancials(ViewExpenses, ViewDistrict).
		Payload(wire.CreatedResponse{Success: true, ID: stored.ID, Message: "Expense added successfully"}).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.finance.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().
		RefreshFinancials(ViewExpenses, ViewDistrict).
		Payload(wire.MessageResponse{Success: true, Message: "Expense deleted"}).
		Write(w)
}

func (s *Server) handleListDistrictExpenses(w http.ResponseWriter, r *http.Request) {
	rows, err := s.finance.ListDistrictExpenses(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]wire.DistrictExpense, 0, len(rows))
	for _, e := range rows {
		out = append(out, wire.FromDistrictExpense(e))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateDistrictExpense(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateDistrictExpenseRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	date, err := bodyDate("date", req.Date)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	stored, err := s.finance.RecordDistrictExpense(r.Context(), core.AutoDistrictExpense{
		Source:         sanitizeInput(req.Source),
		Description:    sanitizeInput(req.Description),
		OriginalAmount: req.OriginalAmount.Money(),
		DistrictAmount: req.DistrictAmount.Money(),
		Date:           date,
		Status:         sanitizeInput(req.Status),
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		RefreshFinancials(ViewDistrict).
		Payload(wire.CreatedResponse{Success: true, ID: stored.ID, Message: "District expense added successfully"}).
		Write(w)
}

// handleDeleteDistrictExpense always answers 403.
func (s *Server) handleDeleteDistrictExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeError(w, r, applog.OpDelete, s.finance.DeleteDistrictExpense(r.Context(), id))
}

func (s *Server) handleDistrictLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.reports.DistrictLedger(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]wire.DistrictLedgerEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, wire.FromDistrictLedgerEntry(e))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.finance.ListInventory(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	out := make([]wire.InventoryItem, 0, len(items))
	for _, it := range items {
		out = append(out, wire.FromInventoryItem(it))
	}
	NewJSONResponse().Payload(out).Write(w)
}

func (s *Server) handleCreateInventory(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateInventoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	stored, err := s.finance.CreateInventoryItem(r.Context(), core.InventoryItem{
		ItemName:  sanitizeInput(req.ItemName),
		Category:  sanitizeInput(req.Category),
		Quantity:  req.Quantity,
		Condition: core.Condition(req.Condition),
	})
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Refresh(ViewInventory).
		Payload(wire.CreatedResponse{Success: true, ID: stored.ID, Message: "Item added successfully"}).
		Write(w)
}

func (s *Server) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	if err := s.finance.DeleteInventoryItem(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	NewJSONResponse().
		Refresh(ViewInventory).
		Payload(wire.MessageResponse{Success: true, Message: "Item deleted"}).
		Write(w)
}
