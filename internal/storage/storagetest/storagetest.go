// Package storagetest provides a throwaway SQLite store seeded with a small catalog.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
	"github.com/hongminglow/airfreight/internal/storage/sqlite"
)

// Airports is the seeded airport catalog.
var Airports = []models.Airport{
	{ID: "EGLL", Name: "London Heathrow", Location: geo.Point{Lat: 51.4706, Lon: -0.461941}, ElevationM: 25},
	{ID: "KBOI", Name: "Boise Air Terminal", Location: geo.Point{Lat: 43.5644, Lon: -116.2228}, ElevationM: 874},
	{ID: "KDEN", Name: "Denver International", Location: geo.Point{Lat: 39.8561, Lon: -104.6737}, ElevationM: 1656},
	{ID: "KJFK", Name: "John F Kennedy International", Location: geo.Point{Lat: 40.6398, Lon: -73.7789}, ElevationM: 4},
	{ID: "KLAX", Name: "Los Angeles International", Location: geo.Point{Lat: 33.9425, Lon: -118.4081}, ElevationM: 38},
	{ID: "KORD", Name: "Chicago O'Hare International", Location: geo.Point{Lat: 41.9786, Lon: -87.9048}, ElevationM: 205},
	{ID: "KPHX", Name: "Phoenix Sky Harbor International", Location: geo.Point{Lat: 33.4343, Lon: -112.0116}, ElevationM: 345},
	{ID: "KSLC", Name: "Salt Lake City International", Location: geo.Point{Lat: 40.7884, Lon: -111.9778}, ElevationM: 1288,
		Runway: models.Runway{LengthM: 3658, WidthM: 46, Lighted: true}},
}

// Freighter matches the worked example: 100 m/s, 1 kg/s, 50,000 kg of fuel.
var Freighter = models.PlaneModel{ID: "freighter", Name: "Test Freighter", CruiseSpeed: 100, Cost: 50_000,
	CargoCapacity: 5_000, FuelBurn: 1, FuelCapacity: 50_000}

// PlaneModels is the seeded model catalog.
var PlaneModels = []models.PlaneModel{
	{ID: "b747", Name: "Boeing 747-8F", CruiseSpeed: 250, Cost: 2_000_000, CargoCapacity: 130_000, FuelBurn: 3.2,
		FuelCapacity: 190_000, PassengerSeats: 0},
	{ID: "c172", Name: "Cessna 172", CruiseSpeed: 60, Cost: 30_000, CargoCapacity: 300, FuelBurn: 0.012,
		FuelCapacity: 150, PassengerSeats: 3},
	Freighter,
}

// Open returns an empty store backed by a file in t.TempDir.
func Open(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "airfreight.db"), nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

// Seeded returns a store holding Airports and PlaneModels.
func Seeded(t *testing.T) *sqlite.Store {
	t.Helper()
	store := Open(t)
	err := store.InTx(context.Background(), func(ctx context.Context, tx storage.Tx) error {
		if err := tx.UpsertAirports(ctx, Airports); err != nil {
			return err
		}
		return tx.UpsertPlaneModels(ctx, PlaneModels)
	})
	require.NoError(t, err)
	return store
}
