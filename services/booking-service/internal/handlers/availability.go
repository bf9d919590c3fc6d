package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
)

// AvailabilityHandler serves the read-only slot endpoints. Results are
// advisory snapshots; booking re-checks inside its transaction.
type AvailabilityHandler struct {
	coordinator *availability.Coordinator
	logger      *slog.Logger
}

func NewAvailabilityHandler(coordinator *availability.Coordinator, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{coordinator: coordinator, logger: logger}
}

type slotItem struct {
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	ArtistIDs []string `json:"artist_ids"`
}

type suggestionItem struct {
	slotItem
	DistanceMinutes int `json:"distance_minutes"`
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rng, err := parseRangeParams(r, 7*24*time.Hour)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	duration, err := parseMinutesParam(r, "duration_minutes", 8*60)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	buffer, err := parseMinutesParam(r, "buffer_minutes", 120)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxResults := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("max_results")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			maxResults = n
		}
	}

	slots, err := h.coordinator.Search(r.Context(), availability.SearchRequest{
		Start:      rng.Start,
		End:        rng.End,
		ArtistIDs:  parseArtistIDs(r),
		LocationID: strings.TrimSpace(r.URL.Query().Get("location_id")),
		Duration:   duration,
		Buffer:     buffer,
		MaxResults: maxResults,
	})
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, newSlotItem(s))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AvailabilityHandler) NextSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	from := time.Now().UTC()
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = parsed.UTC()
	}
	duration, err := parseMinutesParam(r, "duration_minutes", 8*60)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxDays := -1
	if raw := strings.TrimSpace(r.URL.Query().Get("max_days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > 365 {
			http.Error(w, "invalid max_days", http.StatusBadRequest)
			return
		}
		maxDays = n
	}

	found, err := h.coordinator.FindNextAvailable(r.Context(), from, duration, parseArtistIDs(r), maxDays)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}
	if found == nil {
		http.Error(w, "no availability within the search window", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newSuggestionItem(*found))
}

func (h *AvailabilityHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	preferredRaw := strings.TrimSpace(r.URL.Query().Get("preferred_start"))
	if preferredRaw == "" {
		http.Error(w, "preferred_start required", http.StatusBadRequest)
		return
	}
	preferred, err := time.Parse(time.RFC3339, preferredRaw)
	if err != nil {
		http.Error(w, "invalid preferred_start", http.StatusBadRequest)
		return
	}
	duration, err := parseMinutesParam(r, "duration_minutes", 8*60)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := availability.SuggestOptions{}
	if raw := strings.TrimSpace(r.URL.Query().Get("within_days")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 90 {
			opts.WithinDays = n
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("max_suggestions")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			opts.MaxSuggestions = n
		}
	}

	suggestions, err := h.coordinator.SuggestAlternatives(r.Context(), preferred.UTC(), duration, strings.TrimSpace(r.URL.Query().Get("artist_id")), opts)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	items := make([]suggestionItem, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, newSuggestionItem(s))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AvailabilityHandler) writeSearchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, availability.ErrStoreUnavailable):
		http.Error(w, "availability store unavailable", http.StatusServiceUnavailable)
	default:
		h.logger.Error("availability search failed", "err", err)
		http.Error(w, "availability search failed", http.StatusInternalServerError)
	}
}

func newSlotItem(s availability.Slot) slotItem {
	return slotItem{
		StartTime: s.Interval.Start.UTC().Format(time.RFC3339),
		EndTime:   s.Interval.End.UTC().Format(time.RFC3339),
		ArtistIDs: s.ArtistIDs,
	}
}

func newSuggestionItem(s availability.SuggestedSlot) suggestionItem {
	return suggestionItem{
		slotItem:        newSlotItem(s.Slot),
		DistanceMinutes: int(s.Distance / time.Minute),
	}
}
