package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"haulbook/internal/config"
	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
	"haulbook/internal/repository"
)

// BookingScheduler orchestrates window validation, conflict detection,
// capacity checks and the atomic commit of a booking plus its vehicle
// assignment. Check-then-write sequences run under per-customer and
// per-vehicle locks so concurrent conflicting submissions cannot both land.
type BookingScheduler struct {
	bookings  repository.BookingStore
	vehicles  repository.VehicleStore
	calendar  *AvailabilityCalendar
	distance  *DistanceResolver
	conflicts *ConflictDetector
	ledger    *CapacityLedger
	locks     *keyedMutex
	retries   int
	now       func() time.Time
}

func NewBookingScheduler(
	bookings repository.BookingStore,
	vehicles repository.VehicleStore,
	calendar *AvailabilityCalendar,
	distance *DistanceResolver,
	conflicts *ConflictDetector,
	ledger *CapacityLedger,
	cfg config.SchedulingConfig,
) *BookingScheduler {
	retries := cfg.CommitRetries
	if retries < 1 {
		retries = 1
	}
	return &BookingScheduler{
		bookings:  bookings,
		vehicles:  vehicles,
		calendar:  calendar,
		distance:  distance,
		conflicts: conflicts,
		ledger:    ledger,
		locks:     newKeyedMutex(),
		retries:   retries,
		now:       time.Now,
	}
}

// SubmitRequest is the booking submission from the quote/customer-portal
// collaborator. VehicleID requests a specific vehicle; AutoAssign asks the
// scheduler to pick one from the active fleet instead.
type SubmitRequest struct {
	CustomerID         string
	QuoteRef           string
	Direction          db.Direction
	ServiceType        db.ServiceType
	Window             entities.Window
	Address            db.Address
	EstimatedWeightLbs int
	VehicleID          string
	AutoAssign         bool
	IdempotencyToken   string
}

var allowedTransitions = map[db.BookingStatus][]db.BookingStatus{
	db.StatusPending:   {db.StatusConfirmed, db.StatusCancelled},
	db.StatusConfirmed: {db.StatusCompleted, db.StatusCancelled},
	db.StatusCancelled: {},
	db.StatusCompleted: {},
}

func canTransition(from, to db.BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Submit validates, enriches and atomically commits a new booking. A request
// carrying an idempotency token that was already committed returns the
// existing booking unchanged.
func (s *BookingScheduler) Submit(ctx context.Context, req SubmitRequest) (*db.Booking, error) {
	if err := validateSubmit(&req); err != nil {
		return nil, err
	}

	if req.IdempotencyToken != "" {
		existing, err := s.bookings.GetBookingByToken(ctx, req.IdempotencyToken)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	if err := s.calendar.ValidateWindow(ctx, s.now(), req.Window); err != nil {
		return nil, err
	}

	// Best-effort enrichment; never gates the booking.
	distance := s.distance.Resolve(ctx, req.Address)

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		booking, err := s.tryCommit(ctx, req, distance)
		if err == nil {
			return booking, nil
		}
		if errors.Is(err, repository.ErrDuplicateToken) {
			existing, terr := s.bookings.GetBookingByToken(ctx, req.IdempotencyToken)
			if terr == nil && existing != nil {
				return existing, nil
			}
			return nil, err
		}
		var conflict *scherr.ConcurrencyConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
		log.Printf("submit: commit lost a race (attempt %d/%d), retrying: %v", attempt+1, s.retries, err)
	}
	return nil, lastErr
}

// tryCommit runs one full check-then-write sequence under the customer lock,
// taking the candidate vehicle's lock before its capacity check.
func (s *BookingScheduler) tryCommit(ctx context.Context, req SubmitRequest, distance *float64) (*db.Booking, error) {
	unlock := s.locks.lock("customer:" + req.CustomerID)
	defer unlock()

	conflict, err := s.conflicts.FindCustomerConflict(ctx, req.CustomerID, req.Window, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &scherr.DoubleBookingError{
			CustomerID:        req.CustomerID,
			ConflictBookingID: conflict.ID,
			ConflictStart:     conflict.StartTime,
			ConflictEnd:       conflict.EndTime,
		}
	}

	candidates, err := s.candidateVehicles(ctx, req)
	if err != nil {
		return nil, err
	}

	booking := s.buildBooking(req, distance)

	if len(candidates) == 0 {
		// No vehicle requested: commit unassigned; staff assign later via
		// reschedule or fleet tooling.
		if err := s.bookings.CreateBooking(ctx, &booking, nil); err != nil {
			return nil, err
		}
		return &booking, nil
	}

	var lastErr error
	for i := range candidates {
		v := &candidates[i]
		committed, err := s.commitWithVehicle(ctx, &booking, v, req.Window)
		if err == nil {
			return committed, nil
		}
		lastErr = err
		if !req.AutoAssign {
			break
		}
		var capErr *scherr.CapacityExceededError
		var inactiveErr *scherr.VehicleInactiveError
		if !errors.As(err, &capErr) && !errors.As(err, &inactiveErr) {
			break
		}
	}
	return nil, lastErr
}

func (s *BookingScheduler) commitWithVehicle(ctx context.Context, booking *db.Booking, v *db.Vehicle, w entities.Window) (*db.Booking, error) {
	unlock := s.locks.lock("vehicle:" + v.ID)
	defer unlock()

	if err := s.ledger.CheckCapacity(ctx, v, w, booking.EstimatedWeightLbs, ""); err != nil {
		return nil, err
	}

	b := *booking
	b.VehicleID = &v.ID
	assignment := &db.VehicleAssignment{
		BookingID:  b.ID,
		VehicleID:  v.ID,
		AssignedAt: s.now().UTC(),
	}
	if err := s.bookings.CreateBooking(ctx, &b, assignment); err != nil {
		return nil, err
	}
	return &b, nil
}

// candidateVehicles resolves which vehicles to try: the explicitly requested
// one, or (for auto-assignment) every active vehicle whose service area
// covers the address.
func (s *BookingScheduler) candidateVehicles(ctx context.Context, req SubmitRequest) ([]db.Vehicle, error) {
	if req.VehicleID != "" {
		v, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			return nil, err
		}
		return []db.Vehicle{*v}, nil
	}
	if !req.AutoAssign {
		return nil, nil
	}

	active, err := s.vehicles.ListActiveVehicles(ctx)
	if err != nil {
		return nil, err
	}
	var candidates []db.Vehicle
	for _, v := range active {
		if s.serves(ctx, v, req.Address) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil, scherr.ErrVehicleNotFound
	}
	return candidates, nil
}

// serves reports whether the vehicle's service area covers the address.
// An unresolvable address point fails radius checks conservatively.
func (s *BookingScheduler) serves(ctx context.Context, v db.Vehicle, addr db.Address) bool {
	switch v.ServiceArea.Mode {
	case db.AreaPostalCodes:
		for _, code := range v.ServiceArea.PostalCodes {
			if code == addr.PostalCode {
				return true
			}
		}
		return false
	case db.AreaRadius:
		lat, lng, ok := s.distance.ResolvePoint(ctx, addr)
		if !ok {
			return false
		}
		return haversineMiles(v.BaseLat, v.BaseLng, lat, lng) <= v.ServiceArea.RadiusMiles
	default:
		return true
	}
}

func (s *BookingScheduler) buildBooking(req SubmitRequest, distance *float64) db.Booking {
	now := s.now().UTC()
	b := db.Booking{
		ID:                 uuid.NewString(),
		CustomerID:         req.CustomerID,
		Direction:          req.Direction,
		ServiceType:        req.ServiceType,
		Status:             db.StatusPending,
		StartTime:          req.Window.Start,
		EndTime:            req.Window.End,
		Address:            req.Address,
		EstimatedWeightLbs: req.EstimatedWeightLbs,
		DistanceMiles:      distance,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.QuoteRef != "" {
		b.QuoteRef = &req.QuoteRef
	}
	if req.IdempotencyToken != "" {
		b.IdempotencyToken = &req.IdempotencyToken
	}
	return b
}

// Reschedule re-validates the booking against a new window, excluding its
// own committed window from conflict and capacity checks, and atomically
// rewrites window and assignment. On failure the booking is unchanged.
func (s *BookingScheduler) Reschedule(ctx context.Context, bookingID string, newWindow entities.Window) (*db.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.SchedulingActive() {
		return nil, &scherr.InvalidTransitionError{BookingID: bookingID, From: string(booking.Status), To: string(booking.Status)}
	}

	if err := s.calendar.ValidateWindow(ctx, s.now(), newWindow); err != nil {
		return nil, err
	}
	distance := s.distance.Resolve(ctx, booking.Address)

	var lastErr error
	for attempt := 0; attempt < s.retries; attempt++ {
		updated, err := s.tryReschedule(ctx, booking.ID, booking.CustomerID, newWindow, distance)
		if err == nil {
			return updated, nil
		}
		var conflict *scherr.ConcurrencyConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
		log.Printf("reschedule %s: commit lost a race (attempt %d/%d), retrying: %v", bookingID, attempt+1, s.retries, err)
	}
	return nil, lastErr
}

func (s *BookingScheduler) tryReschedule(ctx context.Context, bookingID, customerID string, newWindow entities.Window, distance *float64) (*db.Booking, error) {
	unlock := s.locks.lock("customer:" + customerID)
	defer unlock()

	// Re-read under the lock: the caller's status check ran before the lock
	// was held, and a cancel may have landed in between.
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.SchedulingActive() {
		return nil, &scherr.InvalidTransitionError{BookingID: bookingID, From: string(booking.Status), To: string(booking.Status)}
	}

	conflict, err := s.conflicts.FindCustomerConflict(ctx, booking.CustomerID, newWindow, booking.ID)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &scherr.DoubleBookingError{
			CustomerID:        booking.CustomerID,
			ConflictBookingID: conflict.ID,
			ConflictStart:     conflict.StartTime,
			ConflictEnd:       conflict.EndTime,
		}
	}

	var assignment *db.VehicleAssignment
	if booking.VehicleID != nil {
		// Sorts after the customer key, so the acquisition order matches
		// tryCommit and cannot deadlock against it.
		unlockVehicle := s.locks.lock("vehicle:" + *booking.VehicleID)
		defer unlockVehicle()

		v, err := s.vehicles.GetVehicle(ctx, *booking.VehicleID)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.CheckCapacity(ctx, v, newWindow, booking.WeightLbs(), booking.ID); err != nil {
			return nil, err
		}
		assignment = &db.VehicleAssignment{
			BookingID:  booking.ID,
			VehicleID:  v.ID,
			AssignedAt: s.now().UTC(),
		}
	}

	updated := *booking
	updated.StartTime = newWindow.Start
	updated.EndTime = newWindow.End
	updated.DistanceMiles = distance
	if err := s.bookings.UpdateBookingSchedule(ctx, &updated, assignment); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel sets the booking to cancelled and removes any assignment.
// Cancelling an already-cancelled booking is a no-op success.
func (s *BookingScheduler) Cancel(ctx context.Context, bookingID string) error {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	unlock := s.locks.lock("customer:" + booking.CustomerID)
	defer unlock()

	// Re-read under the lock so a concurrent reschedule or transition
	// cannot slip between the status check and the write.
	booking, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status == db.StatusCancelled {
		return nil
	}
	if !canTransition(booking.Status, db.StatusCancelled) {
		return &scherr.InvalidTransitionError{BookingID: bookingID, From: string(booking.Status), To: string(db.StatusCancelled)}
	}
	return s.bookings.CancelBooking(ctx, bookingID)
}

// Confirm moves a pending booking to confirmed (staff action).
func (s *BookingScheduler) Confirm(ctx context.Context, bookingID string) (*db.Booking, error) {
	return s.transition(ctx, bookingID, db.StatusConfirmed)
}

// Complete moves a confirmed booking to completed (staff action).
func (s *BookingScheduler) Complete(ctx context.Context, bookingID string) (*db.Booking, error) {
	return s.transition(ctx, bookingID, db.StatusCompleted)
}

func (s *BookingScheduler) transition(ctx context.Context, bookingID string, to db.BookingStatus) (*db.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.lock("customer:" + booking.CustomerID)
	defer unlock()

	// Re-read under the lock so a concurrent cancel or reschedule cannot
	// slip between the status check and the write.
	booking, err = s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canTransition(booking.Status, to) {
		return nil, &scherr.InvalidTransitionError{BookingID: bookingID, From: string(booking.Status), To: string(to)}
	}
	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, to); err != nil {
		return nil, err
	}
	booking.Status = to
	return booking, nil
}

// GetBooking fetches one booking for the API surface.
func (s *BookingScheduler) GetBooking(ctx context.Context, bookingID string) (*db.Booking, error) {
	return s.bookings.GetBooking(ctx, bookingID)
}

// ListBookings is the admin listing read path.
func (s *BookingScheduler) ListBookings(ctx context.Context, f repository.BookingFilter) ([]db.Booking, error) {
	return s.bookings.ListBookings(ctx, f)
}

// CheckAvailability is a dry run of the submit checks: it reports whether
// the window would pass without committing anything. Results are advisory;
// a concurrent submission can still win the slot.
func (s *BookingScheduler) CheckAvailability(ctx context.Context, req SubmitRequest) (*entities.AvailabilityResponse, error) {
	resp := &entities.AvailabilityResponse{RequestedWindow: req.Window}

	if err := validateSubmit(&req); err != nil {
		return nil, err
	}
	if err := s.calendar.ValidateWindow(ctx, s.now(), req.Window); err != nil {
		resp.Reason = err.Error()
		return resp, nil
	}

	conflict, err := s.conflicts.FindCustomerConflict(ctx, req.CustomerID, req.Window, "")
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		resp.Reason = fmt.Sprintf("customer already booked from %s to %s",
			conflict.StartTime.Format(time.RFC3339), conflict.EndTime.Format(time.RFC3339))
		return resp, nil
	}

	if req.VehicleID != "" {
		v, err := s.vehicles.GetVehicle(ctx, req.VehicleID)
		if err != nil {
			return nil, err
		}
		resp.VehicleID = v.ID
		committed, err := s.ledger.CommittedWeight(ctx, v.ID, req.Window, "")
		if err != nil {
			return nil, err
		}
		ceiling, err := s.ledger.Ceiling(ctx, v, req.Window)
		if err != nil {
			return nil, err
		}
		resp.CommittedLbs = committed
		resp.CeilingLbs = ceiling
		if err := s.ledger.CheckCapacity(ctx, v, req.Window, req.EstimatedWeightLbs, ""); err != nil {
			resp.Reason = err.Error()
			return resp, nil
		}
	}

	resp.Available = true
	resp.DistanceMiles = s.distance.Resolve(ctx, req.Address)
	return resp, nil
}

// VehicleSchedule builds the admin schedule report for one vehicle and
// window: its overlapping bookings plus committed weight.
func (s *BookingScheduler) VehicleSchedule(ctx context.Context, vehicleID string, w entities.Window) (*entities.VehicleSchedule, error) {
	v, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	overlaps, err := s.conflicts.FindVehicleOverlaps(ctx, vehicleID, w, "")
	if err != nil {
		return nil, err
	}

	schedule := &entities.VehicleSchedule{
		VehicleID:   v.ID,
		Window:      w,
		CapacityLbs: v.CapacityLbs,
	}
	for i := range overlaps {
		b := &overlaps[i]
		entry := entities.VehicleScheduleEntry{
			BookingID:  b.ID,
			CustomerID: b.CustomerID,
			Window:     entities.Window{Start: b.StartTime, End: b.EndTime},
			WeightLbs:  b.WeightLbs(),
			Status:     string(b.Status),
		}
		if a, err := s.bookings.GetAssignment(ctx, b.ID); err == nil && a != nil {
			entry.AssignedAt = a.AssignedAt
		}
		schedule.Entries = append(schedule.Entries, entry)
		schedule.CommittedLbs += entry.WeightLbs
	}
	return schedule, nil
}

func validateSubmit(req *SubmitRequest) error {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	if req.CustomerID == "" {
		return &scherr.ValidationError{Field: "customer_id", Reason: "required"}
	}
	if req.Direction != db.DirectionPickup && req.Direction != db.DirectionDropoff {
		return &scherr.ValidationError{Field: "direction", Reason: fmt.Sprintf("must be %q or %q", db.DirectionPickup, db.DirectionDropoff)}
	}
	if req.ServiceType == "" {
		req.ServiceType = db.ServiceStandard
	}
	if req.ServiceType != db.ServiceStandard && req.ServiceType != db.ServiceExpress {
		return &scherr.ValidationError{Field: "service_type", Reason: fmt.Sprintf("must be %q or %q", db.ServiceStandard, db.ServiceExpress)}
	}
	if !req.Window.Valid() {
		return &scherr.InvalidWindowError{Reason: "end must be after start"}
	}
	if req.EstimatedWeightLbs <= 0 {
		return &scherr.ValidationError{Field: "estimated_weight_lbs", Reason: "must be positive"}
	}
	if strings.TrimSpace(req.Address.Line1) == "" || strings.TrimSpace(req.Address.City) == "" {
		return &scherr.InvalidAddressError{Reason: "line1 and city are required"}
	}
	if (req.Address.Lat == nil) != (req.Address.Lng == nil) {
		return &scherr.InvalidAddressError{Reason: "lat and lng must be supplied together"}
	}
	return nil
}
