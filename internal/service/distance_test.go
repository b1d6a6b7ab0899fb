package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haulbook/internal/config"
	"haulbook/internal/db"
	"haulbook/internal/repository"
)

func TestResolveFromCoordinates(t *testing.T) {
	cfg := config.SchedulingConfig{OriginLat: 0, OriginLng: 0, RoadFactor: 1.0}
	resolver := NewDistanceResolver(repository.NewMemoryStore(), cfg)

	lat, lng := 0.0, 1.0
	got := resolver.Resolve(context.Background(), db.Address{Line1: "x", City: "y", Lat: &lat, Lng: &lng})

	require.NotNil(t, got)
	// One degree of longitude at the equator is ~69.1 miles.
	assert.InDelta(t, 69.1, *got, 0.2)
}

func TestResolveAppliesRoadFactor(t *testing.T) {
	cfg := config.SchedulingConfig{OriginLat: 0, OriginLng: 0, RoadFactor: 1.5}
	resolver := NewDistanceResolver(repository.NewMemoryStore(), cfg)

	lat, lng := 0.0, 1.0
	got := resolver.Resolve(context.Background(), db.Address{Line1: "x", City: "y", Lat: &lat, Lng: &lng})

	require.NotNil(t, got)
	assert.InDelta(t, 69.1*1.5, *got, 0.3)
}

func TestResolveFallsBackToPostalCode(t *testing.T) {
	store := repository.NewMemoryStore()
	store.AddPostalLocation(db.PostalLocation{PostalCode: "28202", City: "Charlotte", State: "NC", Lat: 35.2271, Lng: -80.8431})
	cfg := config.SchedulingConfig{OriginLat: 35.2271, OriginLng: -80.8431, RoadFactor: 1.25}
	resolver := NewDistanceResolver(store, cfg)

	got := resolver.Resolve(context.Background(), db.Address{Line1: "x", City: "Charlotte", PostalCode: "28202"})

	require.NotNil(t, got)
	assert.InDelta(t, 0, *got, 0.01)
}

func TestResolveUnknownAddressReturnsNil(t *testing.T) {
	resolver := NewDistanceResolver(repository.NewMemoryStore(), testSchedulingConfig())

	got := resolver.Resolve(context.Background(), db.Address{Line1: "x", City: "y", PostalCode: "99999"})

	assert.Nil(t, got)
}
