package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/rand"
	"github.com/hongminglow/airfreight/internal/storage"
)

// DestinationPolicy selects how a spawned package picks its goal among the candidates.
type DestinationPolicy string

const (
	// DestinationBiased samples the distance rank from an exponential law.
	DestinationBiased DestinationPolicy = "biased"
	// DestinationUniform picks any candidate with equal probability.
	DestinationUniform DestinationPolicy = "uniform"
)

// SpawnConfig shapes package generation.
type SpawnConfig struct {
	Radius        float64 // meters around the source airport
	MaxCandidates int     // nearest candidates considered, 0 for all
	MinPerAirport int
	MaxPerAirport int
	MaxCount      int
	MaxUnitMass   int
	MaxMultiplier int
	Expiration    time.Duration
	Destination   DestinationPolicy
	Lambda        float64
	SourceSample  int // spawn at this many random airports per tick, 0 for all
}

// DefaultSpawnConfig spawns 1 to 3 packages at every airport each tick, bound for
// airports within 2,000 km and valid for 48 hours.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		Radius:        2_000_000,
		MaxCandidates: 100,
		MinPerAirport: 1,
		MaxPerAirport: 3,
		MaxCount:      10,
		MaxUnitMass:   100,
		MaxMultiplier: 5,
		Expiration:    48 * time.Hour,
		Destination:   DestinationBiased,
		Lambda:        0.08,
	}
}

// Spawner generates new packages. With a seeded source the drawn packages are
// reproducible; ids always come from uuid.New so a restarted process never reuses one.
type Spawner struct {
	cfg     SpawnConfig
	rng     rand.Source
	catalog *catalog.Cache
}

// NewSpawner builds a Spawner drawing from rng.
func NewSpawner(cfg SpawnConfig, rng rand.Source, cat *catalog.Cache) *Spawner {
	return &Spawner{cfg: cfg, rng: rng, catalog: cat}
}

// Generate returns the packages spawned at tick time at. An airport with no candidate
// destination spawns nothing.
func (s *Spawner) Generate(ctx context.Context, r storage.Reader, at time.Time) ([]models.Package, error) {
	airports, err := r.AllAirports(ctx)
	if err != nil {
		return nil, fmt.Errorf("spawn: list airports: %w", err)
	}
	sources := s.sample(airports)

	var out []models.Package
	for _, src := range sources {
		candidates, err := s.catalog.Nearby(ctx, r, src, s.cfg.Radius)
		if err != nil {
			return nil, fmt.Errorf("spawn: candidates for %s: %w", src.ID, err)
		}
		if s.cfg.MaxCandidates > 0 && len(candidates) > s.cfg.MaxCandidates {
			candidates = candidates[:s.cfg.MaxCandidates]
		}
		if len(candidates) == 0 {
			continue
		}

		n := rand.Between(s.rng, s.cfg.MinPerAirport, s.cfg.MaxPerAirport)
		for i := 0; i < n; i++ {
			goal := candidates[s.pick(len(candidates))].Airport
			out = append(out, s.newPackage(src.ID, goal.ID, at))
		}
	}
	return out, nil
}

func (s *Spawner) pick(n int) int {
	if s.cfg.Destination == DestinationUniform {
		return s.rng.Intn(n)
	}
	return rand.ExponentialIndex(s.rng, s.cfg.Lambda, n)
}

func (s *Spawner) newPackage(sourceID, goalID string, at time.Time) models.Package {
	count := rand.Between(s.rng, 1, s.cfg.MaxCount)
	unitMass := rand.Between(s.rng, 1, s.cfg.MaxUnitMass)
	multiplier := rand.Between(s.rng, 1, s.cfg.MaxMultiplier)

	return models.Package{
		ID:          uuid.NewString(),
		Name:        fmt.Sprintf("%d things going to %s", count, goalID),
		Type:        models.Cargo,
		Count:       count,
		UnitMass:    float64(unitMass),
		Goal:        goalID,
		Payout:      float64(count * unitMass * multiplier),
		Expiration:  at.Add(s.cfg.Expiration).UTC(),
		Whereabouts: models.AtAirport{AirportID: sourceID},
	}
}

// sample returns a random subset of SourceSample airports, or all of them.
func (s *Spawner) sample(airports []models.Airport) []models.Airport {
	k := s.cfg.SourceSample
	if k <= 0 || k >= len(airports) {
		return airports
	}
	shuffled := append([]models.Airport(nil), airports...)
	for i := 0; i < k; i++ {
		j := i + s.rng.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:k]
}
