package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	"haulbook/internal/service"
)

type BookingHandler struct {
	Scheduler *service.BookingScheduler
	Calendar  *service.AvailabilityCalendar
}

func NewBookingHandler(scheduler *service.BookingScheduler, calendar *service.AvailabilityCalendar) *BookingHandler {
	return &BookingHandler{Scheduler: scheduler, Calendar: calendar}
}

func (h *BookingHandler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	var req SubmitBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	booking, err := h.Scheduler.Submit(r.Context(), toSubmitRequest(req))
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Scheduler.GetBooking(r.Context(), id)
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) RescheduleBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	booking, err := h.Scheduler.Reschedule(r.Context(), id, entities.Window{Start: req.Start, End: req.End})
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Scheduler.Cancel(r.Context(), id); err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req SubmitBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	resp, err := h.Scheduler.CheckAvailability(r.Context(), toSubmitRequest(req))
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDayHours exposes the resolved opening hours for one date so the portal
// can render pickable slots.
func (h *BookingHandler) GetDayHours(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}
	hours, err := h.Calendar.ResolveHours(r.Context(), date)
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

func toSubmitRequest(req SubmitBookingRequest) service.SubmitRequest {
	return service.SubmitRequest{
		CustomerID:         req.CustomerID,
		QuoteRef:           req.QuoteRef,
		Direction:          db.Direction(req.Direction),
		ServiceType:        db.ServiceType(req.ServiceType),
		Window:             entities.Window{Start: req.Start, End: req.End},
		Address:            req.Address,
		EstimatedWeightLbs: req.EstimatedWeightLbs,
		VehicleID:          req.VehicleID,
		AutoAssign:         req.AutoAssign,
		IdempotencyToken:   req.IdempotencyToken,
	}
}
