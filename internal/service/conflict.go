package service

import (
	"context"
	"fmt"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	"haulbook/internal/repository"
)

// ConflictDetector checks proposed windows against committed bookings. Only
// pending and confirmed bookings participate; cancelled and completed ones
// are excluded by the store queries.
type ConflictDetector struct {
	store repository.BookingStore
}

func NewConflictDetector(store repository.BookingStore) *ConflictDetector {
	return &ConflictDetector{store: store}
}

// FindCustomerConflict returns the earliest pending/confirmed booking of the
// customer overlapping w, or nil when the customer is free. excludeID skips
// the booking being rescheduled.
func (d *ConflictDetector) FindCustomerConflict(ctx context.Context, customerID string, w entities.Window, excludeID string) (*db.Booking, error) {
	conflicts, err := d.store.FindCustomerConflicts(ctx, customerID, w, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error checking customer conflicts: %w", err)
	}
	if len(conflicts) == 0 {
		return nil, nil
	}
	return &conflicts[0], nil
}

// FindVehicleOverlaps returns every pending/confirmed booking assigned to
// the vehicle whose window overlaps w.
func (d *ConflictDetector) FindVehicleOverlaps(ctx context.Context, vehicleID string, w entities.Window, excludeID string) ([]db.Booking, error) {
	overlaps, err := d.store.FindVehicleOverlaps(ctx, vehicleID, w, excludeID)
	if err != nil {
		return nil, fmt.Errorf("error checking vehicle overlaps: %w", err)
	}
	return overlaps, nil
}
