package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
	"github.com/inkflow/inkflow/services/booking-service/internal/storage"
)

// HoursHandler reads and replaces the weekly business-hours rules. A PUT swaps
// the in-process snapshot first, then persists; searches already in flight
// keep the snapshot they started with.
type HoursHandler struct {
	hours  *availability.Hours
	repo   *storage.HoursRepository
	logger *slog.Logger
}

func NewHoursHandler(hours *availability.Hours, repo *storage.HoursRepository, logger *slog.Logger) *HoursHandler {
	return &HoursHandler{hours: hours, repo: repo, logger: logger}
}

type hoursRuleItem struct {
	Weekday     int  `json:"weekday"`
	OpenMinute  int  `json:"open_minute"`
	CloseMinute int  `json:"close_minute"`
	Open        bool `json:"open"`
}

func (h *HoursHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *HoursHandler) get(w http.ResponseWriter, _ *http.Request) {
	rules := h.hours.Rules()
	items := make([]hoursRuleItem, 0, len(rules))
	for _, rule := range rules {
		items = append(items, hoursRuleItem{
			Weekday:     int(rule.Weekday),
			OpenMinute:  rule.OpenMinute,
			CloseMinute: rule.CloseMinute,
			Open:        rule.Open,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *HoursHandler) put(w http.ResponseWriter, r *http.Request) {
	var items []hoursRuleItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	rules := make([]availability.BusinessHoursRule, 0, len(items))
	for _, item := range items {
		rules = append(rules, availability.BusinessHoursRule{
			Weekday:     time.Weekday(item.Weekday),
			OpenMinute:  item.OpenMinute,
			CloseMinute: item.CloseMinute,
			Open:        item.Open,
		})
	}

	if err := h.hours.ReplaceAll(rules); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.repo.ReplaceWeek(r.Context(), rules); err != nil {
		// Snapshot is already live; persistence catches up on the next PUT.
		h.logger.Error("business hours persist failed", "err", err)
		http.Error(w, "failed to persist business hours", http.StatusInternalServerError)
		return
	}
	h.logger.Info("business hours replaced", "rules", len(rules))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
