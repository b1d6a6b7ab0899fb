package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"haulbook/internal/config"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
	"haulbook/internal/repository"
)

// AvailabilityCalendar resolves effective opening hours per calendar date and
// validates booking windows against them. Overrides supplied by calendar
// admin tooling take precedence over the configured defaults.
type AvailabilityCalendar struct {
	store repository.CalendarStore
	cfg   config.SchedulingConfig
}

func NewAvailabilityCalendar(store repository.CalendarStore, cfg config.SchedulingConfig) *AvailabilityCalendar {
	return &AvailabilityCalendar{store: store, cfg: cfg}
}

// ResolveHours returns the effective open/close interval for the calendar
// date of t, in t's location.
func (c *AvailabilityCalendar) ResolveHours(ctx context.Context, t time.Time) (entities.DayHours, error) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	hours := entities.DayHours{Date: day}

	openClock := c.cfg.DefaultOpen
	closeClock := c.cfg.DefaultClose

	override, err := c.store.GetOverride(ctx, day.Format("2006-01-02"))
	if err != nil {
		return hours, fmt.Errorf("error resolving hours for %s: %w", day.Format("2006-01-02"), err)
	}
	if override != nil {
		hours.Reason = override.Reason
		if override.Closed {
			hours.Closed = true
			return hours, nil
		}
		if override.OpenTime != nil {
			openClock = *override.OpenTime
		}
		if override.CloseTime != nil {
			closeClock = *override.CloseTime
		}
	} else if c.cfg.WeekendClosed && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
		hours.Closed = true
		return hours, nil
	}

	hours.Open, err = atClock(day, openClock)
	if err != nil {
		return hours, fmt.Errorf("bad open time %q: %w", openClock, err)
	}
	hours.Close, err = atClock(day, closeClock)
	if err != nil {
		return hours, fmt.Errorf("bad close time %q: %w", closeClock, err)
	}
	return hours, nil
}

// ValidateWindow checks a proposed booking window against shape, lead-time,
// advance-horizon and opening-hour rules. Windows spanning several calendar
// dates are validated one date at a time.
func (c *AvailabilityCalendar) ValidateWindow(ctx context.Context, now time.Time, w entities.Window) error {
	if !w.Valid() {
		return &scherr.InvalidWindowError{Reason: "end must be after start"}
	}
	if w.Start.Sub(now) < c.cfg.MinLeadTime {
		return &scherr.InsufficientNoticeError{MinLead: c.cfg.MinLeadTime, Starts: w.Start}
	}
	if w.Start.After(now.Add(c.cfg.MaxAdvance)) {
		return &scherr.AdvanceTooFarError{MaxAdvance: c.cfg.MaxAdvance, Starts: w.Start}
	}

	for day := startOfDay(w.Start); day.Before(w.End); day = day.AddDate(0, 0, 1) {
		hours, err := c.ResolveHours(ctx, day)
		if err != nil {
			return err
		}
		dateKey := day.Format("2006-01-02")
		if hours.Closed {
			return &scherr.OutOfHoursError{Date: dateKey, Closed: true, Reason: hours.Reason}
		}

		segStart := maxTime(w.Start, day)
		segEnd := minTime(w.End, day.AddDate(0, 0, 1))
		if segStart.Before(hours.Open) || segEnd.After(hours.Close) {
			return &scherr.OutOfHoursError{
				Date:  dateKey,
				Open:  hours.Open.Format("15:04"),
				Close: hours.Close.Format("15:04"),
			}
		}
	}
	return nil
}

// atClock combines a date with an HH:MM clock string in the date's location.
func atClock(day time.Time, clock string) (time.Time, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("expected HH:MM, got %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, fmt.Errorf("bad hour in %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("bad minute in %q", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
