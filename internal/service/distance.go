package service

import (
	"context"
	"log"
	"math"

	"haulbook/internal/config"
	"haulbook/internal/db"
	"haulbook/internal/repository"
)

// DistanceResolver annotates bookings with a road-equivalent distance from
// the depot. Distance is an enrichment: a failed or impossible lookup yields
// "unknown" (nil) and never blocks booking creation.
type DistanceResolver struct {
	postals repository.PostalStore
	cfg     config.SchedulingConfig
}

func NewDistanceResolver(postals repository.PostalStore, cfg config.SchedulingConfig) *DistanceResolver {
	return &DistanceResolver{postals: postals, cfg: cfg}
}

// Resolve returns the estimated road miles from the depot to the address, or
// nil when the address carries neither coordinates nor a known postal code.
func (r *DistanceResolver) Resolve(ctx context.Context, addr db.Address) *float64 {
	lat, lng, ok := r.ResolvePoint(ctx, addr)
	if !ok {
		return nil
	}
	miles := haversineMiles(r.cfg.OriginLat, r.cfg.OriginLng, lat, lng) * r.cfg.RoadFactor
	miles = math.Round(miles*10) / 10
	return &miles
}

// ResolvePoint resolves the address to a geographic point, preferring
// explicit coordinates over a postal-code lookup.
func (r *DistanceResolver) ResolvePoint(ctx context.Context, addr db.Address) (lat, lng float64, ok bool) {
	if addr.Lat != nil && addr.Lng != nil {
		return *addr.Lat, *addr.Lng, true
	}
	if addr.PostalCode == "" {
		return 0, 0, false
	}
	loc, err := r.postals.GetPostalLocation(ctx, addr.PostalCode)
	if err != nil {
		log.Printf("distance: postal lookup %s failed, leaving distance unknown: %v", addr.PostalCode, err)
		return 0, 0, false
	}
	if loc == nil {
		return 0, 0, false
	}
	return loc.Lat, loc.Lng, true
}

const earthRadiusMiles = 3958.8

// haversineMiles computes the great-circle distance between two points.
func haversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
