package service

import (
	"context"
	"fmt"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
	"haulbook/internal/repository"
)

// CapacityLedger tracks committed weight per vehicle and window and enforces
// the governing weight ceiling: the lesser of the vehicle's nominal capacity
// and any overlapping capacity block.
type CapacityLedger struct {
	bookings repository.BookingStore
	calendar repository.CalendarStore
}

func NewCapacityLedger(bookings repository.BookingStore, calendar repository.CalendarStore) *CapacityLedger {
	return &CapacityLedger{bookings: bookings, calendar: calendar}
}

// CommittedWeight sums the weight of every pending/confirmed booking
// assigned to the vehicle whose window overlaps w. Actual weight is used
// where recorded, the estimate otherwise.
func (l *CapacityLedger) CommittedWeight(ctx context.Context, vehicleID string, w entities.Window, excludeID string) (int, error) {
	overlaps, err := l.bookings.FindVehicleOverlaps(ctx, vehicleID, w, excludeID)
	if err != nil {
		return 0, fmt.Errorf("error computing committed weight: %w", err)
	}
	total := 0
	for i := range overlaps {
		total += overlaps[i].WeightLbs()
	}
	return total, nil
}

// Ceiling returns the weight ceiling governing the vehicle over w.
func (l *CapacityLedger) Ceiling(ctx context.Context, vehicle *db.Vehicle, w entities.Window) (int, error) {
	ceiling := vehicle.CapacityLbs
	blocks, err := l.calendar.FindCapacityBlocks(ctx, w, vehicle.ID)
	if err != nil {
		return 0, fmt.Errorf("error querying capacity blocks: %w", err)
	}
	for _, b := range blocks {
		if b.MaxWeightLbs < ceiling {
			ceiling = b.MaxWeightLbs
		}
	}
	return ceiling, nil
}

// CheckCapacity verifies the vehicle is active and that committing
// additionalLbs over w would not exceed the governing ceiling.
func (l *CapacityLedger) CheckCapacity(ctx context.Context, vehicle *db.Vehicle, w entities.Window, additionalLbs int, excludeID string) error {
	if !vehicle.Active {
		return &scherr.VehicleInactiveError{VehicleID: vehicle.ID}
	}
	committed, err := l.CommittedWeight(ctx, vehicle.ID, w, excludeID)
	if err != nil {
		return err
	}
	ceiling, err := l.Ceiling(ctx, vehicle, w)
	if err != nil {
		return err
	}
	if committed+additionalLbs > ceiling {
		return &scherr.CapacityExceededError{
			VehicleID:    vehicle.ID,
			CommittedLbs: committed,
			RequestedLbs: additionalLbs,
			CeilingLbs:   ceiling,
		}
	}
	return nil
}
