package errors

import (
	"errors"
	"fmt"
	"time"
)

// Not-found sentinels shared by the repositories.
var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// ValidationError rejects a malformed request field that is neither the
// window nor the address.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidWindowError rejects a malformed time window (end <= start).
type InvalidWindowError struct {
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window: %s", e.Reason)
}

// InvalidAddressError rejects a malformed booking address.
type InvalidAddressError struct {
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: %s", e.Reason)
}

// OutOfHoursError rejects a window that falls outside the resolved opening
// hours for a calendar date. Open/Close carry the resolved constraint so the
// caller can suggest alternatives.
type OutOfHoursError struct {
	Date   string
	Closed bool
	Open   string
	Close  string
	Reason string
}

func (e *OutOfHoursError) Error() string {
	if e.Closed {
		if e.Reason != "" {
			return fmt.Sprintf("closed on %s (%s)", e.Date, e.Reason)
		}
		return fmt.Sprintf("closed on %s", e.Date)
	}
	return fmt.Sprintf("window falls outside opening hours %s-%s on %s", e.Open, e.Close, e.Date)
}

// InsufficientNoticeError rejects a window starting sooner than the minimum
// lead time from now.
type InsufficientNoticeError struct {
	MinLead time.Duration
	Starts  time.Time
}

func (e *InsufficientNoticeError) Error() string {
	return fmt.Sprintf("bookings require at least %s notice (requested start %s)", e.MinLead, e.Starts.Format(time.RFC3339))
}

// AdvanceTooFarError rejects a window starting beyond the maximum advance
// booking horizon.
type AdvanceTooFarError struct {
	MaxAdvance time.Duration
	Starts     time.Time
}

func (e *AdvanceTooFarError) Error() string {
	return fmt.Sprintf("bookings may be placed at most %s in advance (requested start %s)", e.MaxAdvance, e.Starts.Format(time.RFC3339))
}

// DoubleBookingError rejects a submission overlapping an existing pending or
// confirmed booking for the same customer. The conflicting window is carried
// for the caller's message.
type DoubleBookingError struct {
	CustomerID        string
	ConflictBookingID string
	ConflictStart     time.Time
	ConflictEnd       time.Time
}

func (e *DoubleBookingError) Error() string {
	return fmt.Sprintf("customer %s already has booking %s from %s to %s",
		e.CustomerID, e.ConflictBookingID,
		e.ConflictStart.Format(time.RFC3339), e.ConflictEnd.Format(time.RFC3339))
}

// CapacityExceededError rejects an assignment that would push a vehicle past
// its governing weight ceiling for the window.
type CapacityExceededError struct {
	VehicleID    string
	CommittedLbs int
	RequestedLbs int
	CeilingLbs   int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("vehicle %s over capacity: %d lbs committed + %d lbs requested > %d lbs ceiling",
		e.VehicleID, e.CommittedLbs, e.RequestedLbs, e.CeilingLbs)
}

// VehicleInactiveError rejects an assignment to a vehicle that is not active.
type VehicleInactiveError struct {
	VehicleID string
}

func (e *VehicleInactiveError) Error() string {
	return fmt.Sprintf("vehicle %s is not active", e.VehicleID)
}

// InvalidTransitionError rejects a booking status change the state machine
// does not allow.
type InvalidTransitionError struct {
	BookingID string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s: invalid status transition %s -> %s", e.BookingID, e.From, e.To)
}

// ConcurrencyConflictError is transient: the atomic commit lost a race and
// the full check-then-write sequence should be retried.
type ConcurrencyConflictError struct {
	Key string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("concurrent update conflict on %s", e.Key)
}
