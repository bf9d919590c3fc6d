package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
)

// parseBookingInterval accepts an RFC3339 start with either an explicit end or
// a duration in minutes. Times are normalized to UTC.
func parseBookingInterval(startRaw, endRaw string, durationMins int) (availability.Interval, error) {
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startRaw))
	if err != nil {
		return availability.Interval{}, errors.New("invalid start_time")
	}
	start = start.UTC()

	endRaw = strings.TrimSpace(endRaw)
	if endRaw != "" {
		end, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return availability.Interval{}, errors.New("invalid end_time")
		}
		if !end.After(start) {
			return availability.Interval{}, errors.New("end_time must be after start_time")
		}
		return availability.Interval{Start: start, End: end.UTC()}, nil
	}
	if durationMins <= 0 {
		return availability.Interval{}, errors.New("end_time or duration_minutes required")
	}
	return availability.Interval{Start: start, End: start.Add(time.Duration(durationMins) * time.Minute)}, nil
}

// parseRangeParams reads start/end query params. A missing start defaults to
// now, a missing end to start plus the fallback span.
func parseRangeParams(r *http.Request, fallbackSpan time.Duration) (availability.Interval, error) {
	q := r.URL.Query()

	start := time.Now().UTC()
	if raw := strings.TrimSpace(q.Get("start")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return availability.Interval{}, errors.New("invalid start")
		}
		start = parsed.UTC()
	}

	end := start.Add(fallbackSpan)
	if raw := strings.TrimSpace(q.Get("end")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return availability.Interval{}, errors.New("invalid end")
		}
		end = parsed.UTC()
	}
	if !end.After(start) {
		return availability.Interval{}, errors.New("end must be after start")
	}
	return availability.Interval{Start: start, End: end}, nil
}

func parseArtistIDs(r *http.Request) []string {
	raw := strings.TrimSpace(r.URL.Query().Get("artist_ids"))
	if raw == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func parseMinutesParam(r *http.Request, name string, max int) (time.Duration, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || (max > 0 && n > max) {
		return 0, errors.New("invalid " + name)
	}
	return time.Duration(n) * time.Minute, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
