package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
)

// MemoryStore is an in-memory implementation of the store interfaces. It
// backs the service tests and doubles as a storage engine for local runs
// without Postgres. Every operation is atomic under a single mutex.
type MemoryStore struct {
	mu          sync.RWMutex
	bookings    map[string]db.Booking
	assignments map[string]db.VehicleAssignment
	vehicles    map[string]db.Vehicle
	overrides   map[string]db.AvailabilityOverride
	blocks      []db.CapacityBlock
	postals     map[string]db.PostalLocation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings:    make(map[string]db.Booking),
		assignments: make(map[string]db.VehicleAssignment),
		vehicles:    make(map[string]db.Vehicle),
		overrides:   make(map[string]db.AvailabilityOverride),
		postals:     make(map[string]db.PostalLocation),
	}
}

// Seed helpers for reference data owned by external admin tooling.

func (s *MemoryStore) AddVehicle(v db.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
}

func (s *MemoryStore) SetOverride(o db.AvailabilityOverride) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[o.Date] = o
}

func (s *MemoryStore) AddCapacityBlock(b db.CapacityBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, b)
}

func (s *MemoryStore) AddPostalLocation(loc db.PostalLocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postals[loc.PostalCode] = loc
}

// BookingStore

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, scherr.ErrBookingNotFound
	}
	return &b, nil
}

func (s *MemoryStore) GetBookingByToken(ctx context.Context, token string) (*db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.IdempotencyToken != nil && *b.IdempotencyToken == token {
			bc := b
			return &bc, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindCustomerConflicts(ctx context.Context, customerID string, w entities.Window, excludeID string) ([]db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if b.CustomerID != customerID || b.ID == excludeID || !b.SchedulingActive() {
			continue
		}
		if w.Overlaps(entities.Window{Start: b.StartTime, End: b.EndTime}) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryStore) FindVehicleOverlaps(ctx context.Context, vehicleID string, w entities.Window, excludeID string) ([]db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if b.VehicleID == nil || *b.VehicleID != vehicleID || b.ID == excludeID || !b.SchedulingActive() {
			continue
		}
		if w.Overlaps(entities.Window{Start: b.StartTime, End: b.EndTime}) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *MemoryStore) GetAssignment(ctx context.Context, bookingID string) (*db.VehicleAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[bookingID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if booking.IdempotencyToken != nil {
		for _, existing := range s.bookings {
			if existing.IdempotencyToken != nil && *existing.IdempotencyToken == *booking.IdempotencyToken {
				return ErrDuplicateToken
			}
		}
	}
	s.bookings[booking.ID] = *booking
	if assignment != nil {
		s.assignments[assignment.BookingID] = *assignment
	}
	return nil
}

func (s *MemoryStore) UpdateBookingSchedule(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bookings[booking.ID]
	if !ok {
		return scherr.ErrBookingNotFound
	}
	existing.StartTime = booking.StartTime
	existing.EndTime = booking.EndTime
	existing.DistanceMiles = booking.DistanceMiles
	existing.VehicleID = booking.VehicleID
	existing.UpdatedAt = time.Now()
	s.bookings[booking.ID] = existing
	delete(s.assignments, booking.ID)
	if assignment != nil {
		s.assignments[assignment.BookingID] = *assignment
	}
	return nil
}

func (s *MemoryStore) UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return scherr.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now()
	s.bookings[id] = b
	return nil
}

func (s *MemoryStore) CancelBooking(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return scherr.ErrBookingNotFound
	}
	b.Status = db.StatusCancelled
	b.UpdatedAt = time.Now()
	s.bookings[id] = b
	delete(s.assignments, id)
	return nil
}

func (s *MemoryStore) ListBookings(ctx context.Context, f BookingFilter) ([]db.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.Booking
	for _, b := range s.bookings {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.VehicleID != "" && (b.VehicleID == nil || *b.VehicleID != f.VehicleID) {
			continue
		}
		if f.CustomerID != "" && b.CustomerID != f.CustomerID {
			continue
		}
		if f.Date != "" && b.StartTime.Format("2006-01-02") != f.Date {
			continue
		}
		out = append(out, b)
	}
	sortByStart(out)
	return out, nil
}

// VehicleStore

func (s *MemoryStore) GetVehicle(ctx context.Context, id string) (*db.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, scherr.ErrVehicleNotFound
	}
	return &v, nil
}

func (s *MemoryStore) ListActiveVehicles(ctx context.Context) ([]db.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.Vehicle
	for _, v := range s.vehicles {
		if v.Active {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CalendarStore

func (s *MemoryStore) GetOverride(ctx context.Context, date string) (*db.AvailabilityOverride, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.overrides[date]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *MemoryStore) FindCapacityBlocks(ctx context.Context, w entities.Window, vehicleID string) ([]db.CapacityBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []db.CapacityBlock
	for _, b := range s.blocks {
		if b.VehicleID != nil && *b.VehicleID != vehicleID {
			continue
		}
		if w.Overlaps(entities.Window{Start: b.StartTime, End: b.EndTime}) {
			out = append(out, b)
		}
	}
	return out, nil
}

// PostalStore

func (s *MemoryStore) GetPostalLocation(ctx context.Context, code string) (*db.PostalLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	loc, ok := s.postals[code]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func sortByStart(bookings []db.Booking) {
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].StartTime.Before(bookings[j].StartTime) })
}
