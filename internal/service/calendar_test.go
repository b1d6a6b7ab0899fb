package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haulbook/internal/config"
	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
	"haulbook/internal/repository"
)

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		DefaultOpen:   "08:00",
		DefaultClose:  "17:00",
		WeekendClosed: true,
		MinLeadTime:   2 * time.Hour,
		MaxAdvance:    30 * 24 * time.Hour,
		OriginLat:     35.2271,
		OriginLng:     -80.8431,
		RoadFactor:    1.25,
		CommitRetries: 3,
	}
}

// Monday 2026-03-02, 06:00 UTC.
var testNow = time.Date(2026, time.March, 2, 6, 0, 0, 0, time.UTC)

func monday(h, m int) time.Time {
	return time.Date(2026, time.March, 2, h, m, 0, 0, time.UTC)
}

func newTestCalendar(store *repository.MemoryStore) *AvailabilityCalendar {
	return NewAvailabilityCalendar(store, testSchedulingConfig())
}

func TestValidateWindowDefaults(t *testing.T) {
	cal := newTestCalendar(repository.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, cal.ValidateWindow(ctx, testNow, entities.Window{Start: monday(9, 0), End: monday(11, 0)}))

	err := cal.ValidateWindow(ctx, testNow, entities.Window{Start: monday(16, 0), End: monday(18, 0)})
	var oohErr *scherr.OutOfHoursError
	require.ErrorAs(t, err, &oohErr)
	assert.Equal(t, "17:00", oohErr.Close)
}

func TestValidateWindowWeekendClosed(t *testing.T) {
	cal := newTestCalendar(repository.NewMemoryStore())

	// Saturday 2026-03-07.
	saturday := time.Date(2026, time.March, 7, 9, 0, 0, 0, time.UTC)
	err := cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: saturday, End: saturday.Add(2 * time.Hour)})

	var oohErr *scherr.OutOfHoursError
	require.ErrorAs(t, err, &oohErr)
	assert.True(t, oohErr.Closed)
}

func TestValidateWindowInvalidShape(t *testing.T) {
	cal := newTestCalendar(repository.NewMemoryStore())

	err := cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: monday(11, 0), End: monday(9, 0)})

	var invErr *scherr.InvalidWindowError
	assert.ErrorAs(t, err, &invErr)
}

func TestValidateWindowLeadTime(t *testing.T) {
	cal := newTestCalendar(repository.NewMemoryStore())

	err := cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: monday(7, 0), End: monday(9, 0)})

	var noticeErr *scherr.InsufficientNoticeError
	require.ErrorAs(t, err, &noticeErr)
	assert.Equal(t, 2*time.Hour, noticeErr.MinLead)
}

func TestValidateWindowMaxAdvance(t *testing.T) {
	cal := newTestCalendar(repository.NewMemoryStore())

	start := testNow.Add(31 * 24 * time.Hour)
	err := cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: start, End: start.Add(time.Hour)})

	var advErr *scherr.AdvanceTooFarError
	assert.ErrorAs(t, err, &advErr)
}

func TestOverrideClosedDateBeatsDefaults(t *testing.T) {
	store := repository.NewMemoryStore()
	store.SetOverride(db.AvailabilityOverride{Date: "2026-03-02", Closed: true, Reason: "depot maintenance"})
	cal := newTestCalendar(store)

	err := cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: monday(9, 0), End: monday(11, 0)})

	var oohErr *scherr.OutOfHoursError
	require.ErrorAs(t, err, &oohErr)
	assert.True(t, oohErr.Closed)
	assert.Equal(t, "depot maintenance", oohErr.Reason)
}

func TestOverrideModifiedHours(t *testing.T) {
	store := repository.NewMemoryStore()
	openAt, closeAt := "10:00", "14:00"
	store.SetOverride(db.AvailabilityOverride{Date: "2026-03-02", OpenTime: &openAt, CloseTime: &closeAt})
	cal := newTestCalendar(store)
	ctx := context.Background()

	var oohErr *scherr.OutOfHoursError
	err := cal.ValidateWindow(ctx, testNow, entities.Window{Start: monday(9, 0), End: monday(11, 0)})
	require.ErrorAs(t, err, &oohErr)
	assert.Equal(t, "10:00", oohErr.Open)

	assert.NoError(t, cal.ValidateWindow(ctx, testNow, entities.Window{Start: monday(10, 0), End: monday(12, 0)}))
}

func TestOverrideOpensWeekendDate(t *testing.T) {
	store := repository.NewMemoryStore()
	openAt, closeAt := "09:00", "13:00"
	store.SetOverride(db.AvailabilityOverride{Date: "2026-03-07", OpenTime: &openAt, CloseTime: &closeAt})
	cal := newTestCalendar(store)

	// Saturday, but the override opens it.
	saturday := time.Date(2026, time.March, 7, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, cal.ValidateWindow(context.Background(), testNow, entities.Window{Start: saturday, End: saturday.Add(2 * time.Hour)}))
}

func TestResolveHours(t *testing.T) {
	store := repository.NewMemoryStore()
	cal := newTestCalendar(store)
	ctx := context.Background()

	hours, err := cal.ResolveHours(ctx, monday(0, 0))
	require.NoError(t, err)
	assert.False(t, hours.Closed)
	assert.Equal(t, monday(8, 0), hours.Open)
	assert.Equal(t, monday(17, 0), hours.Close)

	sunday := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	hours, err = cal.ResolveHours(ctx, sunday)
	require.NoError(t, err)
	assert.True(t, hours.Closed)
}
