package repository

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{DB: db}
}

// GetConfirmedBookingIDsPastEnd returns confirmed bookings whose window has
// already ended; the sweep marks them completed.
func (r *JobRepository) GetConfirmedBookingIDsPastEnd() ([]string, error) {
	return r.bookingIDsByStatusPastEnd("confirmed")
}

// GetPendingBookingIDsPastEnd returns pending bookings whose window has
// already ended without staff confirmation; the sweep cancels them.
func (r *JobRepository) GetPendingBookingIDsPastEnd() ([]string, error) {
	return r.bookingIDsByStatusPastEnd("pending")
}

func (r *JobRepository) bookingIDsByStatusPastEnd(status string) ([]string, error) {
	query := `SELECT id FROM bookings WHERE status = $1 AND end_time < NOW()`
	rows, err := r.DB.Query(query, status)
	if err != nil {
		return nil, fmt.Errorf("error querying %s bookings past end time: %w", status, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

// UpdateBookingStatuses moves a set of bookings to newStatus. A cancellation
// also drops the vehicle assignments so the freed capacity is visible.
func (r *JobRepository) UpdateBookingStatuses(ids []string, newStatus string) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2)`
	result, err := r.DB.Exec(query, newStatus, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}

	if newStatus == "cancelled" {
		if _, err := r.DB.Exec(`DELETE FROM vehicle_assignments WHERE booking_id = ANY($1)`, pq.Array(ids)); err != nil {
			return fmt.Errorf("error removing assignments for cancelled bookings: %w", err)
		}
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}
