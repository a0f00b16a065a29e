// Package flight derives the performance of a plane from its model and upgrade level.
package flight

import (
	"time"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
)

// Performance holds the per-level adjustments applied to a model's base figures.
type Performance struct {
	SpeedBonusPerLevel    float64
	BurnReductionPerLevel float64
}

// DefaultPerformance is +10% speed and -5% burn per upgrade level.
func DefaultPerformance() Performance {
	return Performance{SpeedBonusPerLevel: 0.10, BurnReductionPerLevel: 0.05}
}

// Speed returns the effective cruise speed in m/s.
func (p Performance) Speed(model models.PlaneModel, level int) float64 {
	return model.CruiseSpeed * (1 + p.SpeedBonusPerLevel*float64(level))
}

// BurnRate returns the effective fuel burn in kg/s.
func (p Performance) BurnRate(model models.PlaneModel, level int) float64 {
	return model.FuelBurn * (1 - p.BurnReductionPerLevel*float64(level))
}

// RequiredFuel is the fuel in kg needed to fly distance meters.
func (p Performance) RequiredFuel(model models.PlaneModel, level int, distance float64) float64 {
	return p.BurnRate(model, level) * distance / p.Speed(model, level)
}

// Duration is the time spent flying distance meters.
func (p Performance) Duration(model models.PlaneModel, level int, distance float64) time.Duration {
	return time.Duration(distance / p.Speed(model, level) * float64(time.Second))
}

// Arrival returns when a plane of the given model and level that left origin at
// departure reaches destination.
func (p Performance) Arrival(model models.PlaneModel, level int, origin, destination models.Airport, departure time.Time) time.Time {
	return geo.ArrivalTime(origin.Location, destination.Location, departure, p.Speed(model, level))
}
