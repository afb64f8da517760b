package http

import (
	"net/http"
	"strings"

	"outlay/internal/core"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var draft core.ExpenseDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	expense, err := s.expenses.Create(r.Context(), userIDFrom(r.Context()), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// handleListExpenses serves the plain list plus every filter variant. Query
// parameters select the filter; at most one applies per request, checked in
// a fixed order.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFrom(ctx)
	q := r.URL.Query()

	var (
		list []core.Expense
		err  error
	)
	switch {
	case q.Get("category") != "":
		list, err = s.expenses.ListByCategory(ctx, userID, q.Get("category"))
	case q.Get("paymentMethod") != "":
		list, err = s.expenses.ListByPaymentMethod(ctx, userID, q.Get("paymentMethod"))
	case q.Get("search") != "":
		list, err = s.expenses.SearchByItem(ctx, userID, q.Get("search"))
	case q.Get("from") != "" || q.Get("to") != "":
		var dateRange core.DateRange
		dateRange, err = parseDateRange(q.Get("from"), q.Get("to"))
		if err == nil {
			list, err = s.expenses.ListByDateRange(ctx, userID, dateRange)
		}
	case q.Get("minCost") != "" || q.Get("maxCost") != "":
		var costRange core.CostRange
		costRange, err = parseCostRange(q.Get("minCost"), q.Get("maxCost"))
		if err == nil {
			list, err = s.expenses.ListByCostRange(ctx, userID, costRange)
		}
	default:
		list, err = s.expenses.List(ctx, userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, core.ErrNotFound)
		return
	}

	expense, err := s.expenses.Get(r.Context(), userIDFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, core.ErrNotFound)
		return
	}

	var draft core.ExpenseDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	expense, err := s.expenses.Update(r.Context(), userIDFrom(r.Context()), id, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, core.ErrNotFound)
		return
	}

	if err := s.expenses.Delete(r.Context(), userIDFrom(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	values, err := s.expenses.Categories(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (s *Server) handlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	values, err := s.expenses.PaymentMethods(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func parseDateRange(from, to string) (core.DateRange, error) {
	start, err := core.ParseDate(from)
	if err != nil {
		return core.DateRange{}, err
	}
	end, err := core.ParseDate(to)
	if err != nil {
		return core.DateRange{}, err
	}
	return core.DateRange{Start: start, End: end}, nil
}

func parseCostRange(minStr, maxStr string) (core.CostRange, error) {
	minCost, err := parseMoney(minStr)
	if err != nil {
		return core.CostRange{}, err
	}
	maxCost, err := parseMoney(maxStr)
	if err != nil {
		return core.CostRange{}, err
	}
	return core.CostRange{Min: minCost, Max: maxCost}, nil
}

func parseMoney(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
