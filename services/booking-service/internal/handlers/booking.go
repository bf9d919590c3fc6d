package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkflow/inkflow/services/booking-service/internal/availability"
	"github.com/inkflow/inkflow/services/booking-service/internal/model"
	"github.com/inkflow/inkflow/services/booking-service/internal/outbox"
	"github.com/inkflow/inkflow/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo        *storage.AppointmentRepository
	outboxRepo  *outbox.Repository
	coordinator *availability.Coordinator
	logger      *slog.Logger
}

func NewBookingHandler(repo *storage.AppointmentRepository, outboxRepo *outbox.Repository, coordinator *availability.Coordinator, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		repo:        repo,
		outboxRepo:  outboxRepo,
		coordinator: coordinator,
		logger:      logger,
	}
}

type createBookingRequest struct {
	ArtistID        string `json:"artist_id"`
	LocationID      string `json:"location_id"`
	ClientName      string `json:"client_name"`
	ClientEmail     string `json:"client_email"`
	ClientPhone     string `json:"client_phone"`
	ServiceNotes    string `json:"service_notes"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type rescheduleBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type rescheduleBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type listAppointmentItem struct {
	AppointmentID string `json:"appointment_id"`
	ArtistID      string `json:"artist_id"`
	ClientName    string `json:"client_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	req.ArtistID = strings.TrimSpace(req.ArtistID)
	req.ClientName = strings.TrimSpace(req.ClientName)
	if req.ArtistID == "" || req.ClientName == "" {
		http.Error(w, "artist_id and client_name required", http.StatusBadRequest)
		return
	}

	iv, err := parseBookingInterval(req.StartTime, req.EndTime, req.DurationMinutes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if res := h.coordinator.ValidateSchedulingRules(iv.Start, iv.Duration()); !res.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "scheduling rules violated",
			"reasons": res.Reasons,
		})
		return
	}

	appt := &model.Appointment{
		ArtistID:     req.ArtistID,
		LocationID:   strings.TrimSpace(req.LocationID),
		ClientName:   req.ClientName,
		ClientEmail:  strings.TrimSpace(req.ClientEmail),
		ClientPhone:  strings.TrimSpace(req.ClientPhone),
		ServiceNotes: strings.TrimSpace(req.ServiceNotes),
		StartTime:    iv.Start,
		EndTime:      iv.End,
		Status:       availability.StatusBooked,
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Authoritative re-check against row-locked committed state. The exclusion
	// constraint below is the backstop for anything racing past this.
	locked, err := h.repo.LockOverlapping(ctx, tx, appt.ArtistID, appt.StartTime, appt.EndTime, "")
	if err != nil {
		http.Error(w, "failed to check conflicts", http.StatusInternalServerError)
		return
	}
	if report := availability.OverlapConflicts(locked, iv, appt.ArtistID, ""); !report.Empty() {
		writeConflict(w, report)
		return
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if availability.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"artist_id":      appt.ArtistID,
		"location_id":    appt.LocationID,
		"client_email":   appt.ClientEmail,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, createBookingResponse{AppointmentID: id})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	// Cancelling twice is a no-op that replays the original outcome.
	if appt.Status == availability.StatusCancelled && appt.CancelledAt != nil {
		writeJSON(w, http.StatusOK, cancelBookingResponse{
			AppointmentID: appt.ID,
			Status:        availability.StatusCancelled,
			CancelledAt:   appt.CancelledAt.UTC().Format(time.RFC3339),
		})
		return
	}
	if appt.Status != availability.StatusBooked {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.Cancel(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"artist_id":      appt.ArtistID,
		"start_time":     appt.StartTime.UTC().Format(time.RFC3339),
		"end_time":       appt.EndTime.UTC().Format(time.RFC3339),
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appt.ID,
		Status:        availability.StatusCancelled,
		CancelledAt:   cancelledAt.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	iv, err := parseBookingInterval(req.StartTime, req.EndTime, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if res := h.coordinator.ValidateSchedulingRules(iv.Start, iv.Duration()); !res.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "scheduling rules violated",
			"reasons": res.Reasons,
		})
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status != availability.StatusBooked {
		http.Error(w, "only booked appointments can be rescheduled", http.StatusConflict)
		return
	}

	// The appointment's own row must not count against its new interval.
	locked, err := h.repo.LockOverlapping(ctx, tx, appt.ArtistID, iv.Start, iv.End, appt.ID)
	if err != nil {
		http.Error(w, "failed to check conflicts", http.StatusInternalServerError)
		return
	}
	if report := availability.OverlapConflicts(locked, iv, appt.ArtistID, appt.ID); !report.Empty() {
		writeConflict(w, report)
		return
	}

	if err := h.repo.Reschedule(ctx, tx, appt.ID, iv.Start, iv.End); err != nil {
		if availability.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to reschedule appointment", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"artist_id":      appt.ArtistID,
		"old_start_time": appt.StartTime.UTC().Format(time.RFC3339),
		"old_end_time":   appt.EndTime.UTC().Format(time.RFC3339),
		"start_time":     iv.Start.UTC().Format(time.RFC3339),
		"end_time":       iv.End.UTC().Format(time.RFC3339),
	})
	if err != nil {
		http.Error(w, "failed to build reschedule event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentRescheduled,
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rescheduleBookingResponse{
		AppointmentID: appt.ID,
		StartTime:     iv.Start.UTC().Format(time.RFC3339),
		EndTime:       iv.End.UTC().Format(time.RFC3339),
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	artistID := strings.TrimSpace(r.URL.Query().Get("artist_id"))
	rng, err := parseRangeParams(r, 30*24*time.Hour)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.List(r.Context(), artistID, rng.Start, rng.End, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			ArtistID:      appt.ArtistID,
			ClientName:    appt.ClientName,
			StartTime:     appt.StartTime.UTC().Format(time.RFC3339),
			EndTime:       appt.EndTime.UTC().Format(time.RFC3339),
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func writeConflict(w http.ResponseWriter, report availability.ConflictReport) {
	writeJSON(w, http.StatusConflict, map[string]any{
		"error":                   "time slot already booked",
		"conflicting_booking_ids": report.BookingIDs(),
	})
}
