package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"haulbook/internal/db"
)

// PostalRepository looks up postal codes in the static reference table.
type PostalRepository struct {
	DB *sql.DB
}

func NewPostalRepository(database *sql.DB) *PostalRepository {
	return &PostalRepository{DB: database}
}

func (r *PostalRepository) GetPostalLocation(ctx context.Context, code string) (*db.PostalLocation, error) {
	var loc db.PostalLocation
	query := `SELECT postal_code, city, state, county, lat, lng FROM postal_locations WHERE postal_code = $1`
	err := r.DB.QueryRowContext(ctx, query, code).Scan(&loc.PostalCode, &loc.City, &loc.State, &loc.County, &loc.Lat, &loc.Lng)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying postal location %s: %w", code, err)
	}
	return &loc, nil
}
