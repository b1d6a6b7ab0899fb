package api

import (
	"time"

	"haulbook/internal/db"
	"haulbook/internal/entities"
)

// SubmitBookingRequest is the payload from the quote/customer-portal
// collaborator.
type SubmitBookingRequest struct {
	CustomerID         string     `json:"customer_id"`
	QuoteRef           string     `json:"quote_ref,omitempty"`
	Direction          string     `json:"direction"`
	ServiceType        string     `json:"service_type,omitempty"`
	Start              time.Time  `json:"start"`
	End                time.Time  `json:"end"`
	Address            db.Address `json:"address"`
	EstimatedWeightLbs int        `json:"estimated_weight_lbs"`
	VehicleID          string     `json:"vehicle_id,omitempty"`
	AutoAssign         bool       `json:"auto_assign,omitempty"`
	IdempotencyToken   string     `json:"idempotency_token,omitempty"`
}

type RescheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type BookingResponse struct {
	BookingID         string          `json:"booking_id"`
	Status            string          `json:"status"`
	Direction         string          `json:"direction"`
	ServiceType       string          `json:"service_type"`
	Window            entities.Window `json:"window"`
	Address           db.Address      `json:"address"`
	EstimatedWeight   int             `json:"estimated_weight_lbs"`
	DistanceMiles     *float64        `json:"distance_miles,omitempty"`
	AssignedVehicleID string          `json:"assigned_vehicle_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toBookingResponse(b *db.Booking) BookingResponse {
	resp := BookingResponse{
		BookingID:       b.ID,
		Status:          string(b.Status),
		Direction:       string(b.Direction),
		ServiceType:     string(b.ServiceType),
		Window:          entities.Window{Start: b.StartTime, End: b.EndTime},
		Address:         b.Address,
		EstimatedWeight: b.EstimatedWeightLbs,
		DistanceMiles:   b.DistanceMiles,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.VehicleID != nil {
		resp.AssignedVehicleID = *b.VehicleID
	}
	return resp
}
