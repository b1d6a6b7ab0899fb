package entities

import "time"

// DayHours are the effective opening hours resolved for one calendar date,
// after any override has been applied.
type DayHours struct {
	Date   time.Time `json:"date"`
	Open   time.Time `json:"open"`
	Close  time.Time `json:"close"`
	Closed bool      `json:"closed"`
	Reason string    `json:"reason,omitempty"`
}

// AvailabilityResponse is the result of a dry-run availability check: it
// reports whether a window would pass validation without committing anything.
type AvailabilityResponse struct {
	RequestedWindow Window   `json:"requested_window"`
	Available       bool     `json:"available"`
	Reason          string   `json:"reason,omitempty"`
	VehicleID       string   `json:"vehicle_id,omitempty"`
	CommittedLbs    int      `json:"committed_lbs,omitempty"`
	CeilingLbs      int      `json:"ceiling_lbs,omitempty"`
	DistanceMiles   *float64 `json:"distance_miles,omitempty"`
}

// VehicleScheduleEntry is one booking on a vehicle's schedule, used by the
// admin schedule report.
type VehicleScheduleEntry struct {
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	Window     Window    `json:"window"`
	WeightLbs  int       `json:"weight_lbs"`
	Status     string    `json:"status"`
	AssignedAt time.Time `json:"assigned_at"`
}

// VehicleSchedule aggregates a vehicle's overlapping bookings for a window
// together with the committed weight over that window.
type VehicleSchedule struct {
	VehicleID    string                 `json:"vehicle_id"`
	Window       Window                 `json:"window"`
	CommittedLbs int                    `json:"committed_lbs"`
	CapacityLbs  int                    `json:"capacity_lbs"`
	Entries      []VehicleScheduleEntry `json:"entries"`
}
