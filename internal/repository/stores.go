package repository

import (
	"context"
	"errors"

	"haulbook/internal/db"
	"haulbook/internal/entities"
)

// ErrDuplicateToken is returned by booking stores when an insert collides
// with an existing idempotency token. The scheduler resolves it by returning
// the already-created booking.
var ErrDuplicateToken = errors.New("idempotency token already used")

// BookingFilter narrows admin listings. Zero values mean "any".
type BookingFilter struct {
	Date       string
	Status     db.BookingStatus
	VehicleID  string
	CustomerID string
}

// BookingStore is the persistence contract the scheduling services consume.
// Create/Update/Cancel operations that touch both the booking and its
// assignment must apply atomically.
type BookingStore interface {
	GetBooking(ctx context.Context, id string) (*db.Booking, error)
	// GetBookingByToken returns (nil, nil) when no booking carries the token.
	GetBookingByToken(ctx context.Context, token string) (*db.Booking, error)
	// FindCustomerConflicts returns pending/confirmed bookings for the
	// customer whose windows overlap w, excluding excludeID when non-empty.
	FindCustomerConflicts(ctx context.Context, customerID string, w entities.Window, excludeID string) ([]db.Booking, error)
	// FindVehicleOverlaps returns pending/confirmed bookings assigned to the
	// vehicle whose windows overlap w, excluding excludeID when non-empty.
	FindVehicleOverlaps(ctx context.Context, vehicleID string, w entities.Window, excludeID string) ([]db.Booking, error)
	GetAssignment(ctx context.Context, bookingID string) (*db.VehicleAssignment, error)
	// CreateBooking persists the booking and, when assignment is non-nil, the
	// assignment in the same atomic unit.
	CreateBooking(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error
	// UpdateBookingSchedule rewrites the window, distance and vehicle of an
	// existing booking and replaces its assignment (nil removes it).
	UpdateBookingSchedule(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error
	UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error
	// CancelBooking sets the status to cancelled and removes any assignment
	// in the same atomic unit.
	CancelBooking(ctx context.Context, id string) error
	ListBookings(ctx context.Context, f BookingFilter) ([]db.Booking, error)
}

// VehicleStore reads the vehicle registry maintained by fleet admin tooling.
type VehicleStore interface {
	GetVehicle(ctx context.Context, id string) (*db.Vehicle, error)
	ListActiveVehicles(ctx context.Context) ([]db.Vehicle, error)
}

// CalendarStore reads availability overrides and capacity blocks maintained
// by calendar admin tooling.
type CalendarStore interface {
	// GetOverride returns (nil, nil) when the date has no override.
	GetOverride(ctx context.Context, date string) (*db.AvailabilityOverride, error)
	// FindCapacityBlocks returns blocks overlapping w that apply to the given
	// vehicle (vehicle-specific blocks plus global ones).
	FindCapacityBlocks(ctx context.Context, w entities.Window, vehicleID string) ([]db.CapacityBlock, error)
}

// PostalStore resolves postal codes against static reference data.
type PostalStore interface {
	// GetPostalLocation returns (nil, nil) when the code is unknown.
	GetPostalLocation(ctx context.Context, code string) (*db.PostalLocation, error)
}
