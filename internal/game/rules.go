package game

import "github.com/hongminglow/airfreight/internal/flight"

// Rules are the economy constants of the game.
type Rules struct {
	StartingFunds       float64
	UpgradeCosts        []float64 // cost of leaving level i, so len is the max level
	FuelPricePerKg      float64
	RepairPricePerPoint float64
	Performance         flight.Performance
}

// DefaultRules returns the standard economy.
func DefaultRules() Rules {
	return Rules{
		StartingFunds:       100_000,
		UpgradeCosts:        []float64{50_000, 100_000, 200_000},
		FuelPricePerKg:      5,
		RepairPricePerPoint: 1000,
		Performance:         flight.DefaultPerformance(),
	}
}

// MaxUpgradeLevel is the highest reachable upgrade level.
func (r Rules) MaxUpgradeLevel() int {
	return len(r.UpgradeCosts)
}
