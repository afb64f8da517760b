package http

import (
	"net/http"
	"strconv"
	"time"

	"outlay/internal/core"
)

type totalResponse struct {
	Total core.Money `json:"total"`
}

type monthlyTotalResponse struct {
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Total core.Money `json:"total"`
}

type yearlyTotalResponse struct {
	Year  int        `json:"year"`
	Total core.Money `json:"total"`
}

type categoryTotalResponse struct {
	Category string     `json:"category"`
	Total    core.Money `json:"total"`
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.expenses.Total(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Total: total})
}

func (s *Server) handleRangeTotal(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	total, err := s.expenses.TotalByDateRange(r.Context(), userIDFrom(r.Context()), dateRange)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totalResponse{Total: total})
}

func (s *Server) handleMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	total, err := s.expenses.MonthlyTotal(r.Context(), userIDFrom(r.Context()), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, monthlyTotalResponse{Year: year, Month: month, Total: total})
}

func (s *Server) handleYearlyTotal(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, core.ErrInvalidDate)
			return
		}
		year = parsed
	}

	total, err := s.expenses.YearlyTotal(r.Context(), userIDFrom(r.Context()), year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, yearlyTotalResponse{Year: year, Total: total})
}

func (s *Server) handleCategoryTotal(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("name")

	total, err := s.expenses.TotalByCategory(r.Context(), userIDFrom(r.Context()), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryTotalResponse{Category: category, Total: total})
}

func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	events, err := s.repo.ListAuditEvents(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
