package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"haulbook/internal/db"
	scherr "haulbook/internal/errors"
)

// VehicleRepository reads the vehicle registry. The registry is owned by
// fleet admin tooling; the engine never writes to it.
type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

const vehicleColumns = `
	id, name, capacity_lbs, active,
	service_area_mode, service_area_codes, service_area_radius_miles,
	base_lat, base_lng`

func scanVehicle(row interface{ Scan(...any) error }) (*db.Vehicle, error) {
	var v db.Vehicle
	var codes pq.StringArray
	err := row.Scan(
		&v.ID, &v.Name, &v.CapacityLbs, &v.Active,
		&v.ServiceArea.Mode, &codes, &v.ServiceArea.RadiusMiles,
		&v.BaseLat, &v.BaseLng,
	)
	if err != nil {
		return nil, err
	}
	v.ServiceArea.PostalCodes = []string(codes)
	return &v, nil
}

func (r *VehicleRepository) GetVehicle(ctx context.Context, id string) (*db.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	v, err := scanVehicle(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scherr.ErrVehicleNotFound
		}
		return nil, fmt.Errorf("error querying vehicle %s: %w", id, err)
	}
	return v, nil
}

func (r *VehicleRepository) ListActiveVehicles(ctx context.Context) ([]db.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE active ORDER BY name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning vehicle row: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating vehicle rows: %w", err)
	}
	return vehicles, nil
}
