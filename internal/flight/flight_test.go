package flight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
)

var testModel = models.PlaneModel{ID: "test", CruiseSpeed: 100, FuelBurn: 1, FuelCapacity: 50_000}

func TestSpeedAndBurnScaleWithLevel(t *testing.T) {
	perf := DefaultPerformance()
	speeds := []float64{100, 110, 120, 130}
	burns := []float64{1, 0.95, 0.90, 0.85}
	for level := 0; level <= 3; level++ {
		assert.InDelta(t, speeds[level], perf.Speed(testModel, level), 1e-9)
		assert.InDelta(t, burns[level], perf.BurnRate(testModel, level), 1e-9)
	}
}

func TestRequiredFuel(t *testing.T) {
	perf := DefaultPerformance()
	assert.InDelta(t, 31_000, perf.RequiredFuel(testModel, 0, 3_100_000), 1e-6)
	assert.Less(t, perf.RequiredFuel(testModel, 3, 3_100_000), perf.RequiredFuel(testModel, 0, 3_100_000))
	assert.Less(t, perf.RequiredFuel(testModel, 0, 1_000_000), perf.RequiredFuel(testModel, 0, 2_000_000))
}

func TestArrivalUsesEffectiveSpeed(t *testing.T) {
	perf := DefaultPerformance()
	origin := models.Airport{ID: "KSLC", Location: geo.Point{Lat: 40.7884, Lon: -111.9778}}
	dest := models.Airport{ID: "KDEN", Location: geo.Point{Lat: 39.8561, Lon: -104.6737}}
	dep := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	base := perf.Arrival(testModel, 0, origin, dest, dep)
	upgraded := perf.Arrival(testModel, 2, origin, dest, dep)
	assert.True(t, upgraded.Before(base))

	dist := geo.Distance(origin.Location, dest.Location)
	assert.Equal(t, base.Sub(dep), perf.Duration(testModel, 0, dist))
}
