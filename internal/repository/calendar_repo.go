package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"haulbook/internal/db"
	"haulbook/internal/entities"
)

// CalendarRepository reads availability overrides and capacity blocks.
// Both tables are maintained by calendar admin tooling and read-only here.
type CalendarRepository struct {
	DB *sql.DB
}

func NewCalendarRepository(database *sql.DB) *CalendarRepository {
	return &CalendarRepository{DB: database}
}

func (r *CalendarRepository) GetOverride(ctx context.Context, date string) (*db.AvailabilityOverride, error) {
	var o db.AvailabilityOverride
	query := `
		SELECT to_char(override_date, 'YYYY-MM-DD'), closed, open_time, close_time, reason
		FROM availability_overrides
		WHERE override_date = $1::date`
	err := r.DB.QueryRowContext(ctx, query, date).Scan(&o.Date, &o.Closed, &o.OpenTime, &o.CloseTime, &o.Reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying availability override for %s: %w", date, err)
	}
	return &o, nil
}

func (r *CalendarRepository) FindCapacityBlocks(ctx context.Context, w entities.Window, vehicleID string) ([]db.CapacityBlock, error) {
	query := `
		SELECT id, start_time, end_time, max_weight_lbs, vehicle_id, note
		FROM capacity_blocks
		WHERE start_time < $2
		  AND end_time > $1
		  AND (vehicle_id IS NULL OR vehicle_id = $3)
		ORDER BY start_time`
	rows, err := r.DB.QueryContext(ctx, query, w.Start, w.End, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error querying capacity blocks: %w", err)
	}
	defer rows.Close()

	var blocks []db.CapacityBlock
	for rows.Next() {
		var b db.CapacityBlock
		if err := rows.Scan(&b.ID, &b.StartTime, &b.EndTime, &b.MaxWeightLbs, &b.VehicleID, &b.Note); err != nil {
			return nil, fmt.Errorf("error scanning capacity block row: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating capacity block rows: %w", err)
	}
	return blocks, nil
}
