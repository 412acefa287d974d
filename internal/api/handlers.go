package api

import (
	"errors"
	"net/http"
	"strconv"

	"txnetl/internal/api/render"
	"txnetl/internal/storage"
)

const defaultTopUsersLimit = 10

// handleUserSummary serves GET /api/user_transaction_summary?user_id=N.
func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		render.Error(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		render.Error(w, "user_id must be an integer", http.StatusBadRequest)
		return
	}

	summary, err := s.store.UserTransactionSummary(r.Context(), userID)
	if errors.Is(err, storage.ErrNotFound) {
		render.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("user summary query", "user_id", userID, "error", err)
		render.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	render.JSON(w, summary)
}

// handleTopUsers serves GET /api/top_users?limit=N (default 10).
func (s *Server) handleTopUsers(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopUsersLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			render.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	users, err := s.store.TopUsersByVolume(r.Context(), limit)
	if err != nil {
		s.log.Error("top users query", "error", err)
		render.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if len(users) == 0 {
		render.Error(w, "no users found", http.StatusNotFound)
		return
	}
	render.JSON(w, users)
}

// handleDailyTransactions serves GET /api/daily_transactions.
func (s *Server) handleDailyTransactions(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.DailyTotals(r.Context())
	if err != nil {
		s.log.Error("daily totals query", "error", err)
		render.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if totals == nil {
		totals = []storage.DailyTotal{}
	}
	render.JSON(w, totals)
}

// handleLogMonitor serves GET /api/log_monitor: how many records each log
// level has seen since startup.
func (s *Server) handleLogMonitor(w http.ResponseWriter, r *http.Request) {
	if s.counts == nil {
		render.JSON(w, struct{}{})
		return
	}
	render.JSON(w, s.counts.Snapshot())
}
