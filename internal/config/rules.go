package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/hongminglow/airfreight/internal/flight"
	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/sim"
)

// Duration decodes Go duration strings such as "10m" from TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Rules is the game rules file. Keys left out keep their defaults.
type Rules struct {
	Economy EconomyRules `toml:"economy"`
	Flight  FlightRules  `toml:"flight"`
	Tick    TickRules    `toml:"tick"`
	Spawn   SpawnRules   `toml:"spawn"`
}

type EconomyRules struct {
	StartingFunds       float64   `toml:"starting_funds"`
	UpgradeCosts        []float64 `toml:"upgrade_costs"`
	FuelPricePerKg      float64   `toml:"fuel_price_per_kg"`
	RepairPricePerPoint float64   `toml:"repair_price_per_point"`
}

type FlightRules struct {
	SpeedBonusPerLevel    float64 `toml:"speed_bonus_per_level"`
	BurnReductionPerLevel float64 `toml:"burn_reduction_per_level"`
	MaxUpgradeLevel       int     `toml:"max_upgrade_level"`
	WearPerFlightHour     float64 `toml:"wear_per_flight_hour"`
}

type TickRules struct {
	Interval Duration `toml:"interval"`
	Mode     string   `toml:"mode"`
	// MaxCatchUp caps the ticks run per scheduler call, 0 for none.
	MaxCatchUp int `toml:"max_catch_up"`
	// Background is the period of the timer driving the scheduler, 0 to rely on
	// requests alone.
	Background Duration `toml:"background"`
}

type SpawnRules struct {
	RadiusM       float64  `toml:"radius_m"`
	MaxCandidates int      `toml:"max_candidates"`
	MinPerAirport int      `toml:"min_per_airport"`
	MaxPerAirport int      `toml:"max_per_airport"`
	MaxCount      int      `toml:"max_count"`
	MaxUnitMass   int      `toml:"max_unit_mass"`
	MaxMultiplier int      `toml:"max_multiplier"`
	Expiration    Duration `toml:"expiration"`
	Destination   string   `toml:"destination"`
	Lambda        float64  `toml:"lambda"`
	SourceSample  int      `toml:"source_sample"`
	Seed          int64    `toml:"seed"` // 0 seeds from the clock
}

// DefaultRules returns the standard game.
func DefaultRules() Rules {
	g := game.DefaultRules()
	sched := sim.DefaultSchedulerConfig()
	spawn := sim.DefaultSpawnConfig()
	return Rules{
		Economy: EconomyRules{
			StartingFunds:       g.StartingFunds,
			UpgradeCosts:        g.UpgradeCosts,
			FuelPricePerKg:      g.FuelPricePerKg,
			RepairPricePerPoint: g.RepairPricePerPoint,
		},
		Flight: FlightRules{
			SpeedBonusPerLevel:    g.Performance.SpeedBonusPerLevel,
			BurnReductionPerLevel: g.Performance.BurnReductionPerLevel,
			MaxUpgradeLevel:       g.MaxUpgradeLevel(),
		},
		Tick: TickRules{
			Interval:   Duration{sched.Interval},
			Mode:       string(sched.Mode),
			MaxCatchUp: sched.MaxCatchUp,
			Background: Duration{time.Minute},
		},
		Spawn: SpawnRules{
			RadiusM:       spawn.Radius,
			MaxCandidates: spawn.MaxCandidates,
			MinPerAirport: spawn.MinPerAirport,
			MaxPerAirport: spawn.MaxPerAirport,
			MaxCount:      spawn.MaxCount,
			MaxUnitMass:   spawn.MaxUnitMass,
			MaxMultiplier: spawn.MaxMultiplier,
			Expiration:    Duration{spawn.Expiration},
			Destination:   string(spawn.Destination),
			Lambda:        spawn.Lambda,
			SourceSample:  spawn.SourceSample,
		},
	}
}

// LoadRules decodes the TOML file at path over the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	md, err := toml.DecodeFile(path, &rules)
	if err != nil {
		return Rules{}, fmt.Errorf("load rules %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Rules{}, fmt.Errorf("load rules %s: unknown key %s", path, undecoded[0])
	}
	return rules, nil
}

// Validate checks ranges and cross-field consistency.
func (r Rules) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	e := r.Economy
	check(e.StartingFunds >= 0, "economy.starting_funds must not be negative")
	check(e.FuelPricePerKg >= 0, "economy.fuel_price_per_kg must not be negative")
	check(e.RepairPricePerPoint >= 0, "economy.repair_price_per_point must not be negative")
	for i, c := range e.UpgradeCosts {
		check(c >= 0, "economy.upgrade_costs[%d] must not be negative", i)
	}
	check(r.Flight.MaxUpgradeLevel == len(e.UpgradeCosts),
		"flight.max_upgrade_level is %d but economy.upgrade_costs has %d entries", r.Flight.MaxUpgradeLevel, len(e.UpgradeCosts))

	f := r.Flight
	check(f.SpeedBonusPerLevel >= 0, "flight.speed_bonus_per_level must not be negative")
	check(f.BurnReductionPerLevel >= 0 && f.BurnReductionPerLevel*float64(f.MaxUpgradeLevel) < 1,
		"flight.burn_reduction_per_level must keep burn positive at the top level")
	check(f.WearPerFlightHour >= 0, "flight.wear_per_flight_hour must not be negative")

	t := r.Tick
	check(t.Interval.Duration > 0, "tick.interval must be positive")
	check(t.Mode == string(sim.ModeCatchUp) || t.Mode == string(sim.ModeSnap), "tick.mode must be catchup or snap, got %q", t.Mode)
	check(t.MaxCatchUp >= 0, "tick.max_catch_up must not be negative, 0 means no cap")
	check(t.Background.Duration >= 0, "tick.background must not be negative")

	s := r.Spawn
	check(s.RadiusM > 0, "spawn.radius_m must be positive")
	check(s.MaxCandidates >= 0, "spawn.max_candidates must not be negative")
	check(s.MinPerAirport >= 0 && s.MinPerAirport <= s.MaxPerAirport, "spawn.min_per_airport must be between 0 and max_per_airport")
	check(s.MaxCount >= 1, "spawn.max_count must be at least 1")
	check(s.MaxUnitMass >= 1, "spawn.max_unit_mass must be at least 1")
	check(s.MaxMultiplier >= 1, "spawn.max_multiplier must be at least 1")
	check(s.Expiration.Duration > 0, "spawn.expiration must be positive")
	check(s.Destination == string(sim.DestinationBiased) || s.Destination == string(sim.DestinationUniform),
		"spawn.destination must be biased or uniform, got %q", s.Destination)
	check(s.Lambda > 0, "spawn.lambda must be positive")
	check(s.SourceSample >= 0, "spawn.source_sample must not be negative")

	if len(errs) > 0 {
		return fmt.Errorf("invalid rules: %w", errors.Join(errs...))
	}
	return nil
}

// Game returns the economy rules.
func (r Rules) Game() game.Rules {
	return game.Rules{
		StartingFunds:       r.Economy.StartingFunds,
		UpgradeCosts:        append([]float64(nil), r.Economy.UpgradeCosts...),
		FuelPricePerKg:      r.Economy.FuelPricePerKg,
		RepairPricePerPoint: r.Economy.RepairPricePerPoint,
		Performance:         r.Performance(),
	}
}

// Performance returns the per-level flight adjustments.
func (r Rules) Performance() flight.Performance {
	return flight.Performance{
		SpeedBonusPerLevel:    r.Flight.SpeedBonusPerLevel,
		BurnReductionPerLevel: r.Flight.BurnReductionPerLevel,
	}
}

// Simulator returns the tick physics.
func (r Rules) Simulator() sim.SimulatorConfig {
	return sim.SimulatorConfig{Performance: r.Performance(), WearPerFlightHour: r.Flight.WearPerFlightHour}
}

// Scheduler returns the tick cadence.
func (r Rules) Scheduler() sim.SchedulerConfig {
	return sim.SchedulerConfig{Interval: r.Tick.Interval.Duration, Mode: sim.Mode(r.Tick.Mode), MaxCatchUp: r.Tick.MaxCatchUp}
}

// Spawner returns the package generation settings.
func (r Rules) Spawner() sim.SpawnConfig {
	s := r.Spawn
	return sim.SpawnConfig{
		Radius:        s.RadiusM,
		MaxCandidates: s.MaxCandidates,
		MinPerAirport: s.MinPerAirport,
		MaxPerAirport: s.MaxPerAirport,
		MaxCount:      s.MaxCount,
		MaxUnitMass:   s.MaxUnitMass,
		MaxMultiplier: s.MaxMultiplier,
		Expiration:    s.Expiration.Duration,
		Destination:   sim.DestinationPolicy(s.Destination),
		Lambda:        s.Lambda,
		SourceSample:  s.SourceSample,
	}
}
