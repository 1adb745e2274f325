package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/CTAG07/FunMoneyGames/pkg/stats"
)

const defaultDailyLimit = 30

// StatsAPI holds the dependencies for the statistics handlers.
type StatsAPI struct {
	store  *stats.Store
	logger *slog.Logger
}

func NewStatsAPI(store *stats.Store, logger *slog.Logger) *StatsAPI {
	return &StatsAPI{
		store:  store,
		logger: logger,
	}
}

func (s *StatsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats/summary", s.handleSummary)
	mux.HandleFunc("/api/stats/daily", s.handleDaily)
	mux.HandleFunc("/api/stats/locales", s.handleLocales)
}

func (s *StatsAPI) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeStatsRead) {
		return
	}
	summary, err := s.store.Summary(r.Context())
	if err != nil {
		s.logger.Error("Failed to query stats summary", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (s *StatsAPI) handleDaily(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeStatsRead) {
		return
	}
	limit := defaultDailyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be a non-negative integer")
			return
		}
		limit = n
	}
	days, err := s.store.Daily(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to query daily stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondWithJSON(w, http.StatusOK, days)
}

func (s *StatsAPI) handleLocales(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, scopeStatsRead) {
		return
	}
	locales, err := s.store.Locales(r.Context())
	if err != nil {
		s.logger.Error("Failed to query locale stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	respondWithJSON(w, http.StatusOK, locales)
}
