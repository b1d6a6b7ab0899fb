package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	"haulbook/internal/repository"
	"haulbook/internal/service"
)

type AdminHandler struct {
	Scheduler *service.BookingScheduler
}

func NewAdminHandler(scheduler *service.BookingScheduler) *AdminHandler {
	return &AdminHandler{Scheduler: scheduler}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	filter := repository.BookingFilter{
		Date:       r.URL.Query().Get("date"),
		Status:     db.BookingStatus(r.URL.Query().Get("status")),
		VehicleID:  r.URL.Query().Get("vehicle_id"),
		CustomerID: r.URL.Query().Get("customer_id"),
	}
	bookings, err := h.Scheduler.ListBookings(r.Context(), filter)
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}

	resp := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		resp = append(resp, toBookingResponse(&bookings[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Scheduler.Confirm(r.Context(), id)
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *AdminHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Scheduler.Complete(r.Context(), id)
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// VehicleSchedule reports a vehicle's overlapping bookings and committed
// weight for a window, for the dispatch dashboard.
func (h *AdminHandler) VehicleSchedule(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["id"]
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "start must be RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end must be RFC3339"})
		return
	}

	schedule, err := h.Scheduler.VehicleSchedule(r.Context(), vehicleID, entities.Window{Start: start, End: end})
	if err != nil {
		writeSchedulingError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}
