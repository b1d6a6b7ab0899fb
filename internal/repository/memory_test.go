package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haulbook/internal/db"
)

func TestMemoryStoreTouchesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	seeded := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	newBooking := func(id string) *db.Booking {
		return &db.Booking{
			ID:         id,
			CustomerID: "C1",
			Direction:  db.DirectionPickup,
			Status:     db.StatusPending,
			StartTime:  seeded,
			EndTime:    seeded.Add(2 * time.Hour),
			CreatedAt:  seeded,
			UpdatedAt:  seeded,
		}
	}

	t.Run("update schedule", func(t *testing.T) {
		store := NewMemoryStore()
		b := newBooking("b1")
		require.NoError(t, store.CreateBooking(ctx, b, nil))

		b.StartTime = seeded.Add(time.Hour)
		b.EndTime = seeded.Add(3 * time.Hour)
		require.NoError(t, store.UpdateBookingSchedule(ctx, b, nil))

		stored, err := store.GetBooking(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, stored.UpdatedAt.After(seeded))
	})

	t.Run("update status", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateBooking(ctx, newBooking("b2"), nil))

		require.NoError(t, store.UpdateBookingStatus(ctx, "b2", db.StatusConfirmed))

		stored, err := store.GetBooking(ctx, "b2")
		require.NoError(t, err)
		assert.True(t, stored.UpdatedAt.After(seeded))
	})

	t.Run("cancel", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.CreateBooking(ctx, newBooking("b3"), nil))

		require.NoError(t, store.CancelBooking(ctx, "b3"))

		stored, err := store.GetBooking(ctx, "b3")
		require.NoError(t, err)
		assert.Equal(t, db.StatusCancelled, stored.Status)
		assert.True(t, stored.UpdatedAt.After(seeded))
	})
}
