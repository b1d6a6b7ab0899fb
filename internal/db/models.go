package db

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

type Direction string

const (
	DirectionPickup  Direction = "pickup"
	DirectionDropoff Direction = "dropoff"
)

type ServiceType string

const (
	ServiceStandard ServiceType = "standard"
	ServiceExpress  ServiceType = "express"
)

// Address is the structured booking address. Lat/Lng are optional; when
// absent the postal code is used for distance resolution.
type Address struct {
	Line1      string   `json:"line1"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

type Booking struct {
	ID                 string
	CustomerID         string
	QuoteRef           *string
	Direction          Direction
	ServiceType        ServiceType
	Status             BookingStatus
	StartTime          time.Time
	EndTime            time.Time
	Address            Address
	EstimatedWeightLbs int
	ActualWeightLbs    *int
	DistanceMiles      *float64
	VehicleID          *string
	IdempotencyToken   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// WeightLbs returns the actual weight once known, otherwise the estimate.
func (b *Booking) WeightLbs() int {
	if b.ActualWeightLbs != nil {
		return *b.ActualWeightLbs
	}
	return b.EstimatedWeightLbs
}

// SchedulingActive reports whether the booking participates in conflict and
// capacity checks.
func (b *Booking) SchedulingActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

type ServiceAreaMode string

const (
	AreaPostalCodes ServiceAreaMode = "postal_codes"
	AreaRadius      ServiceAreaMode = "radius"
)

// ServiceArea describes which addresses a vehicle serves: either an explicit
// set of postal codes or a maximum radius from the vehicle's base location.
type ServiceArea struct {
	Mode        ServiceAreaMode
	PostalCodes []string
	RadiusMiles float64
}

type Vehicle struct {
	ID          string
	Name        string
	CapacityLbs int
	Active      bool
	ServiceArea ServiceArea
	BaseLat     float64
	BaseLng     float64
}

// VehicleAssignment links a booking to a vehicle. At most one exists per
// booking; it is removed when the booking is cancelled or rescheduled away.
type VehicleAssignment struct {
	BookingID  string
	VehicleID  string
	AssignedAt time.Time
	Notes      string
}

// AvailabilityOverride is an exception to default business hours for a single
// calendar date. Date is stored as YYYY-MM-DD. OpenTime/CloseTime are HH:MM
// strings and only consulted when Closed is false.
type AvailabilityOverride struct {
	Date      string
	Closed    bool
	OpenTime  *string
	CloseTime *string
	Reason    string
}

// CapacityBlock is a temporary ceiling on committed weight during a window.
// VehicleID nil means the block applies to every vehicle.
type CapacityBlock struct {
	ID           int
	StartTime    time.Time
	EndTime      time.Time
	MaxWeightLbs int
	VehicleID    *string
	Note         string
}

// PostalLocation is static reference data mapping a postal code to a point.
type PostalLocation struct {
	PostalCode string
	City       string
	State      string
	County     string
	Lat        float64
	Lng        float64
}
