package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
	"haulbook/internal/repository"
)

func TestCommittedWeightSumsOverlapsOnly(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddVehicle(activeVehicle("V", 1000))
	ledger := NewCapacityLedger(store, store)
	ctx := context.Background()

	seedBooking(t, store, "C1", "V", db.StatusConfirmed, entities.Window{Start: monday(9, 0), End: monday(11, 0)}, 600)
	seedBooking(t, store, "C2", "V", db.StatusPending, entities.Window{Start: monday(10, 0), End: monday(12, 0)}, 300)
	// Disjoint and cancelled bookings do not count.
	seedBooking(t, store, "C3", "V", db.StatusConfirmed, entities.Window{Start: monday(13, 0), End: monday(14, 0)}, 900)
	seedBooking(t, store, "C4", "V", db.StatusCancelled, entities.Window{Start: monday(9, 0), End: monday(11, 0)}, 900)

	committed, err := ledger.CommittedWeight(ctx, "V", entities.Window{Start: monday(10, 30), End: monday(11, 30)}, "")
	require.NoError(t, err)
	assert.Equal(t, 900, committed)
}

func TestCommittedWeightPrefersActualWeight(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddVehicle(activeVehicle("V", 1000))
	ledger := NewCapacityLedger(store, store)
	ctx := context.Background()

	actual := 750
	vid := "V"
	b := db.Booking{
		ID: "b1", CustomerID: "C1", Direction: db.DirectionPickup, ServiceType: db.ServiceStandard,
		Status: db.StatusConfirmed, StartTime: monday(9, 0), EndTime: monday(11, 0),
		EstimatedWeightLbs: 600, ActualWeightLbs: &actual, VehicleID: &vid,
	}
	require.NoError(t, store.CreateBooking(ctx, &b, &db.VehicleAssignment{BookingID: "b1", VehicleID: "V", AssignedAt: testNow}))

	committed, err := ledger.CommittedWeight(ctx, "V", entities.Window{Start: monday(9, 0), End: monday(11, 0)}, "")
	require.NoError(t, err)
	assert.Equal(t, 750, committed)
}

func TestCeilingTakesLowestOverlappingBlock(t *testing.T) {
	store := repository.NewMemoryStore()
	v := activeVehicle("V", 2000)
	store.AddVehicle(v)
	store.AddCapacityBlock(db.CapacityBlock{StartTime: monday(8, 0), EndTime: monday(12, 0), MaxWeightLbs: 800})
	vid := "V"
	store.AddCapacityBlock(db.CapacityBlock{StartTime: monday(10, 0), EndTime: monday(11, 0), MaxWeightLbs: 500, VehicleID: &vid})
	other := "W"
	store.AddCapacityBlock(db.CapacityBlock{StartTime: monday(8, 0), EndTime: monday(17, 0), MaxWeightLbs: 100, VehicleID: &other})
	ledger := NewCapacityLedger(store, store)

	ceiling, err := ledger.Ceiling(context.Background(), &v, entities.Window{Start: monday(9, 0), End: monday(11, 0)})
	require.NoError(t, err)
	assert.Equal(t, 500, ceiling)

	// Outside every block the nominal capacity governs.
	ceiling, err = ledger.Ceiling(context.Background(), &v, entities.Window{Start: monday(13, 0), End: monday(14, 0)})
	require.NoError(t, err)
	assert.Equal(t, 2000, ceiling)
}

func TestCheckCapacityExcludeSkipsOwnBooking(t *testing.T) {
	store := repository.NewMemoryStore()
	v := activeVehicle("V", 1000)
	store.AddVehicle(v)
	ledger := NewCapacityLedger(store, store)
	ctx := context.Background()

	b := seedBooking(t, store, "C1", "V", db.StatusConfirmed, entities.Window{Start: monday(9, 0), End: monday(11, 0)}, 900)

	w := entities.Window{Start: monday(9, 0), End: monday(11, 0)}
	err := ledger.CheckCapacity(ctx, &v, w, 900, b.ID)
	assert.NoError(t, err)

	var capErr *scherr.CapacityExceededError
	err = ledger.CheckCapacity(ctx, &v, w, 900, "")
	assert.ErrorAs(t, err, &capErr)
}

func TestCheckCapacityInactiveVehicle(t *testing.T) {
	store := repository.NewMemoryStore()
	v := activeVehicle("V", 1000)
	v.Active = false
	store.AddVehicle(v)
	ledger := NewCapacityLedger(store, store)

	var inactiveErr *scherr.VehicleInactiveError
	err := ledger.CheckCapacity(context.Background(), &v, entities.Window{Start: monday(9, 0), End: monday(10, 0)}, 1, "")
	assert.ErrorAs(t, err, &inactiveErr)
}
