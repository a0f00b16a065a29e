package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/flight"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/rand"
	"github.com/hongminglow/airfreight/internal/storage"
	"github.com/hongminglow/airfreight/internal/storage/storagetest"
)

// lowSource always draws the smallest value.
type lowSource struct{}

func (lowSource) Intn(int) int     { return 0 }
func (lowSource) Float64() float64 { return 0 }

func newCache(t *testing.T) *catalog.Cache {
	t.Helper()
	c, err := catalog.New(64)
	require.NoError(t, err)
	return c
}

func withoutIDs(pkgs []models.Package) []models.Package {
	out := append([]models.Package(nil), pkgs...)
	for i := range out {
		out[i].ID = ""
	}
	return out
}

func TestSpawnIsDeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	store := storagetest.Seeded(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	a, err := NewSpawner(DefaultSpawnConfig(), rand.New(42), newCache(t)).Generate(ctx, store, at)
	require.NoError(t, err)
	b, err := NewSpawner(DefaultSpawnConfig(), rand.New(42), newCache(t)).Generate(ctx, store, at)
	require.NoError(t, err)
	assert.Equal(t, withoutIDs(a), withoutIDs(b))
	require.NotEmpty(t, a)

	perSource := map[string]int{}
	ids := map[string]bool{}
	for _, p := range a {
		src := p.Whereabouts.(models.AtAirport).AirportID
		perSource[src]++
		assert.False(t, ids[p.ID], "duplicate id %s", p.ID)
		ids[p.ID] = true

		assert.NotEqual(t, src, p.Goal)
		assert.GreaterOrEqual(t, p.Count, 1)
		assert.LessOrEqual(t, p.Count, 10)
		assert.GreaterOrEqual(t, p.UnitMass, 1.0)
		assert.LessOrEqual(t, p.UnitMass, 100.0)
		ratio := p.Payout / (float64(p.Count) * p.UnitMass)
		assert.GreaterOrEqual(t, ratio, 1.0)
		assert.LessOrEqual(t, ratio, 5.0)
		assert.Equal(t, at.Add(48*time.Hour), p.Expiration)
		assert.Equal(t, models.Cargo, p.Type)
	}
	assert.Zero(t, perSource["EGLL"], "no candidate within radius")
	for src, n := range perSource {
		assert.GreaterOrEqual(t, n, 1, src)
		assert.LessOrEqual(t, n, 3, src)
	}
	assert.Len(t, perSource, len(storagetest.Airports)-1)
}

func TestSpawnBiasedPicksNearest(t *testing.T) {
	ctx := context.Background()
	store := storagetest.Seeded(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	pkgs, err := NewSpawner(DefaultSpawnConfig(), lowSource{}, newCache(t)).Generate(ctx, store, at)
	require.NoError(t, err)

	goals := map[string]string{}
	for _, p := range pkgs {
		goals[p.Whereabouts.(models.AtAirport).AirportID] = p.Goal
		assert.Equal(t, "1 things going to "+p.Goal, p.Name)
		assert.Equal(t, 1.0, p.Payout)
	}
	assert.Equal(t, map[string]string{
		"KBOI": "KSLC",
		"KDEN": "KSLC",
		"KJFK": "KORD",
		"KLAX": "KPHX",
		"KORD": "KJFK",
		"KPHX": "KLAX",
		"KSLC": "KBOI",
	}, goals)
}

func TestSpawnRadiusAndSample(t *testing.T) {
	ctx := context.Background()
	store := storagetest.Seeded(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	cfg := DefaultSpawnConfig()
	cfg.Radius = 500_000
	pkgs, err := NewSpawner(cfg, rand.New(9), newCache(t)).Generate(ctx, store, at)
	require.NoError(t, err)
	for _, p := range pkgs {
		src := p.Whereabouts.(models.AtAirport).AirportID
		assert.Contains(t, []string{"KSLC", "KBOI"}, src, "only the Salt Lake/Boise pair is within 500 km")
	}

	cfg = DefaultSpawnConfig()
	cfg.SourceSample = 2
	cfg.Destination = DestinationUniform
	pkgs, err = NewSpawner(cfg, rand.New(3), newCache(t)).Generate(ctx, store, at)
	require.NoError(t, err)
	sources := map[string]bool{}
	for _, p := range pkgs {
		sources[p.Whereabouts.(models.AtAirport).AirportID] = true
	}
	assert.LessOrEqual(t, len(sources), 2)
}

func TestSpawnWithSameSeedAfterRestart(t *testing.T) {
	ctx := context.Background()
	store := storagetest.Seeded(t)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cfg := SimulatorConfig{Performance: flight.DefaultPerformance()}

	cache := newCache(t)
	first := NewSimulator(store, cache, cfg, NewSpawner(DefaultSpawnConfig(), rand.New(42), cache), nil)
	rep, err := first.Tick(ctx, at)
	require.NoError(t, err)
	require.NotZero(t, rep.Spawned)

	cache = newCache(t)
	restarted := NewSimulator(store, cache, cfg, NewSpawner(DefaultSpawnConfig(), rand.New(42), cache), nil)
	again, err := restarted.Tick(ctx, at.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, rep.Spawned, again.Spawned)

	pkgs, err := store.Packages(ctx, storage.NewPage(storage.MaxLimit, 1))
	require.NoError(t, err)
	assert.Len(t, pkgs, rep.Spawned+again.Spawned)
}
