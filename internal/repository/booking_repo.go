package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"haulbook/internal/db"
	"haulbook/internal/entities"
	scherr "haulbook/internal/errors"
)

const bookingColumns = `
	id, customer_id, quote_ref, direction, service_type, status,
	start_time, end_time,
	addr_line1, addr_city, addr_state, addr_postal_code, addr_lat, addr_lng,
	estimated_weight_lbs, actual_weight_lbs, distance_miles,
	vehicle_id, idempotency_token, created_at, updated_at`

type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) *BookingRepository {
	return &BookingRepository{DB: database}
}

func scanBooking(row interface{ Scan(...any) error }) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.QuoteRef, &b.Direction, &b.ServiceType, &b.Status,
		&b.StartTime, &b.EndTime,
		&b.Address.Line1, &b.Address.City, &b.Address.State, &b.Address.PostalCode,
		&b.Address.Lat, &b.Address.Lng,
		&b.EstimatedWeightLbs, &b.ActualWeightLbs, &b.DistanceMiles,
		&b.VehicleID, &b.IdempotencyToken, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetBooking(ctx context.Context, id string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scherr.ErrBookingNotFound
		}
		return nil, fmt.Errorf("error querying booking %s: %w", id, err)
	}
	return b, nil
}

func (r *BookingRepository) GetBookingByToken(ctx context.Context, token string) (*db.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_token = $1`
	b, err := scanBooking(r.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying booking by token: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) FindCustomerConflicts(ctx context.Context, customerID string, w entities.Window, excludeID string) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4 = '' OR id <> $4)
		ORDER BY start_time`
	return r.queryBookings(ctx, query, customerID, w.Start, w.End, excludeID)
}

func (r *BookingRepository) FindVehicleOverlaps(ctx context.Context, vehicleID string, w entities.Window, excludeID string) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE vehicle_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $3
		  AND end_time > $2
		  AND ($4 = '' OR id <> $4)
		ORDER BY start_time`
	return r.queryBookings(ctx, query, vehicleID, w.Start, w.End, excludeID)
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...any) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

func (r *BookingRepository) GetAssignment(ctx context.Context, bookingID string) (*db.VehicleAssignment, error) {
	var a db.VehicleAssignment
	query := `SELECT booking_id, vehicle_id, assigned_at, notes FROM vehicle_assignments WHERE booking_id = $1`
	err := r.DB.QueryRowContext(ctx, query, bookingID).Scan(&a.BookingID, &a.VehicleID, &a.AssignedAt, &a.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying assignment for booking %s: %w", bookingID, err)
	}
	return &a, nil
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning booking insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO bookings
		(id, customer_id, quote_ref, direction, service_type, status,
		 start_time, end_time,
		 addr_line1, addr_city, addr_state, addr_postal_code, addr_lat, addr_lng,
		 estimated_weight_lbs, actual_weight_lbs, distance_miles,
		 vehicle_id, idempotency_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = tx.ExecContext(ctx, query,
		booking.ID, booking.CustomerID, booking.QuoteRef, booking.Direction, booking.ServiceType, booking.Status,
		booking.StartTime, booking.EndTime,
		booking.Address.Line1, booking.Address.City, booking.Address.State, booking.Address.PostalCode,
		booking.Address.Lat, booking.Address.Lng,
		booking.EstimatedWeightLbs, booking.ActualWeightLbs, booking.DistanceMiles,
		booking.VehicleID, booking.IdempotencyToken, booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return translatePQError(err, "error inserting booking")
	}

	if assignment != nil {
		query = `INSERT INTO vehicle_assignments (booking_id, vehicle_id, assigned_at, notes) VALUES ($1, $2, $3, $4)`
		if _, err = tx.ExecContext(ctx, query, assignment.BookingID, assignment.VehicleID, assignment.AssignedAt, assignment.Notes); err != nil {
			return translatePQError(err, "error inserting vehicle assignment")
		}
	}

	if err = tx.Commit(); err != nil {
		return translatePQError(err, "error committing booking insert")
	}
	return nil
}

func (r *BookingRepository) UpdateBookingSchedule(ctx context.Context, booking *db.Booking, assignment *db.VehicleAssignment) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning booking update tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE bookings
		SET start_time = $2, end_time = $3, distance_miles = $4, vehicle_id = $5, updated_at = NOW()
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, booking.ID, booking.StartTime, booking.EndTime, booking.DistanceMiles, booking.VehicleID)
	if err != nil {
		return translatePQError(err, "error updating booking schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scherr.ErrBookingNotFound
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM vehicle_assignments WHERE booking_id = $1`, booking.ID); err != nil {
		return translatePQError(err, "error clearing vehicle assignment")
	}
	if assignment != nil {
		query = `INSERT INTO vehicle_assignments (booking_id, vehicle_id, assigned_at, notes) VALUES ($1, $2, $3, $4)`
		if _, err = tx.ExecContext(ctx, query, assignment.BookingID, assignment.VehicleID, assignment.AssignedAt, assignment.Notes); err != nil {
			return translatePQError(err, "error inserting vehicle assignment")
		}
	}

	if err = tx.Commit(); err != nil {
		return translatePQError(err, "error committing booking update")
	}
	return nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id string, status db.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		return translatePQError(err, "error updating booking status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scherr.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) CancelBooking(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE bookings SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return translatePQError(err, "error cancelling booking")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return scherr.ErrBookingNotFound
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM vehicle_assignments WHERE booking_id = $1`, id); err != nil {
		return translatePQError(err, "error removing vehicle assignment")
	}

	if err = tx.Commit(); err != nil {
		return translatePQError(err, "error committing cancel")
	}
	return nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, f BookingFilter) ([]db.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE ($1 = '' OR start_time::date = $1::date)
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR vehicle_id = $3)
		  AND ($4 = '' OR customer_id = $4)
		ORDER BY start_time`
	return r.queryBookings(ctx, query, f.Date, string(f.Status), f.VehicleID, f.CustomerID)
}

// translatePQError maps Postgres error codes onto the scheduling taxonomy:
// unique violations on the idempotency token become ErrDuplicateToken and
// serialization failures become a retryable ConcurrencyConflictError.
func translatePQError(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			if pqErr.Constraint == "bookings_idempotency_token_key" {
				return ErrDuplicateToken
			}
			return &scherr.ConcurrencyConflictError{Key: pqErr.Constraint}
		case "serialization_failure", "deadlock_detected":
			return &scherr.ConcurrencyConflictError{Key: pqErr.Constraint}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
