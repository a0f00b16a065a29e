package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/flight"
	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/rand"
	"github.com/hongminglow/airfreight/internal/storage"
	"github.com/hongminglow/airfreight/internal/storage/sqlite"
	"github.com/hongminglow/airfreight/internal/storage/storagetest"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type world struct {
	store *sqlite.Store
	cache *catalog.Cache
	svc   *game.Service
	sim   *Simulator
}

func newWorld(t *testing.T, spawner bool, wear float64) world {
	t.Helper()
	store := storagetest.Seeded(t)
	cache := newCache(t)
	var sp *Spawner
	if spawner {
		sp = NewSpawner(DefaultSpawnConfig(), rand.New(7), cache)
	}
	return world{
		store: store,
		cache: cache,
		svc:   game.NewService(store, cache, game.DefaultRules(), nil, game.WithClock(func() time.Time { return t0 })),
		sim:   NewSimulator(store, cache, SimulatorConfig{Performance: flight.DefaultPerformance(), WearPerFlightHour: wear}, sp, nil),
	}
}

func (w world) packages(t *testing.T) []models.Package {
	t.Helper()
	pkgs, err := w.store.Packages(context.Background(), storage.NewPage(storage.MaxLimit, 1))
	require.NoError(t, err)
	return pkgs
}

func (w world) put(t *testing.T, pkgs ...models.Package) {
	t.Helper()
	for i := range pkgs {
		pkgs[i].Type = models.Cargo
		if pkgs[i].Expiration.IsZero() {
			pkgs[i].Expiration = t0.Add(48 * time.Hour)
		}
	}
	require.NoError(t, w.store.InsertPackages(context.Background(), pkgs))
}

func TestEndToEndDelivery(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, false, 0)

	_, err := w.svc.EnsureUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	_, err = w.svc.Purchase(ctx, "N123AB", "freighter", "KSLC", "alice")
	require.NoError(t, err)
	w.put(t,
		models.Package{ID: "to-jfk", Count: 5, UnitMass: 20, Goal: "KJFK", Payout: 400, Whereabouts: models.AtAirport{AirportID: "KSLC"}},
		models.Package{ID: "to-den", Count: 1, UnitMass: 20, Goal: "KDEN", Payout: 90, Whereabouts: models.AtAirport{AirportID: "KSLC"}},
	)
	_, err = w.svc.LoadPackage(ctx, "to-jfk", "N123AB", "alice")
	require.NoError(t, err)
	_, err = w.svc.LoadPackage(ctx, "to-den", "N123AB", "alice")
	require.NoError(t, err)

	plane, err := w.svc.Embark(ctx, "N123AB", "KJFK", "alice")
	require.NoError(t, err)
	assert.InDelta(t, 18_064.14, plane.Fuel, 0.01)
	assert.Equal(t, models.EnRoute{OriginID: "KSLC", DestinationID: "KJFK", Departure: t0}, plane.Whereabouts)

	// The flight takes 8h52m16s.
	rep, err := w.sim.Tick(ctx, t0.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, rep.Arrived)
	plane, err = w.svc.Plane(ctx, "N123AB")
	require.NoError(t, err)
	assert.IsType(t, models.EnRoute{}, plane.Whereabouts)

	rep, err = w.sim.Tick(ctx, t0.Add(9*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Arrived)
	assert.Equal(t, 1, rep.Delivered)
	assert.Equal(t, 400.0, rep.Payout)

	plane, err = w.svc.Plane(ctx, "N123AB")
	require.NoError(t, err)
	assert.Equal(t, models.AtAirport{AirportID: "KJFK"}, plane.Whereabouts)

	u, err := w.svc.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50_400.0, u.Funds)

	_, err = w.svc.Package(ctx, "to-jfk")
	assert.ErrorIs(t, err, game.ErrNotFound)
	other, err := w.svc.Package(ctx, "to-den")
	require.NoError(t, err)
	assert.Equal(t, models.OnPlane{TailNumber: "N123AB"}, other.Whereabouts, "not auto-unloaded")

	rep, err = w.sim.Tick(ctx, t0.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, rep.Arrived, "a plane lands once")
	u, err = w.svc.User(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50_400.0, u.Funds)
}

func TestArrivalWithDeletedOwner(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, false, 0)

	_, err := w.svc.EnsureUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	_, err = w.svc.Purchase(ctx, "N123AB", "freighter", "KSLC", "alice")
	require.NoError(t, err)
	w.put(t, models.Package{ID: "p", Count: 1, UnitMass: 1, Goal: "KDEN", Payout: 10, Whereabouts: models.AtAirport{AirportID: "KSLC"}})
	_, err = w.svc.LoadPackage(ctx, "p", "N123AB", "alice")
	require.NoError(t, err)
	_, err = w.svc.Embark(ctx, "N123AB", "KDEN", "alice")
	require.NoError(t, err)
	require.NoError(t, w.svc.DeleteUser(ctx, "alice"))

	rep, err := w.sim.Tick(ctx, t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Arrived)
	assert.Equal(t, 1, rep.Delivered)
	assert.Empty(t, w.packages(t))
}

func TestExpirationPurgesEverywhere(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, false, 0)
	at := t0.Add(time.Hour)

	w.put(t,
		models.Package{ID: "old-ground", Count: 1, UnitMass: 1, Goal: "KDEN", Payout: 1, Expiration: at,
			Whereabouts: models.AtAirport{AirportID: "KSLC"}},
		models.Package{ID: "old-air", Count: 1, UnitMass: 1, Goal: "KDEN", Payout: 1, Expiration: at.Add(-time.Minute),
			Whereabouts: models.OnPlane{TailNumber: "N123AB"}},
		models.Package{ID: "fresh", Count: 1, UnitMass: 1, Goal: "KDEN", Payout: 1, Expiration: at.Add(time.Second),
			Whereabouts: models.AtAirport{AirportID: "KSLC"}},
	)

	rep, err := w.sim.Tick(ctx, at)
	require.NoError(t, err)
	assert.EqualValues(t, 2, rep.Expired)

	left := w.packages(t)
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].ID)
}

func TestSpawnedPackagesArePersisted(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, true, 0)

	rep, err := w.sim.Tick(ctx, t0)
	require.NoError(t, err)
	assert.Positive(t, rep.Spawned)
	assert.Len(t, w.packages(t), rep.Spawned)

	// Spawned packages expire 48 hours later.
	rep, err = w.sim.Tick(ctx, t0.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Positive(t, rep.Expired)
}

func TestWearOnArrival(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t, false, 2)

	_, err := w.svc.EnsureUser(ctx, "alice", "Alice")
	require.NoError(t, err)
	_, err = w.svc.Purchase(ctx, "N123AB", "freighter", "KSLC", "alice")
	require.NoError(t, err)
	_, err = w.svc.Embark(ctx, "N123AB", "KJFK", "alice")
	require.NoError(t, err)

	_, err = w.sim.Tick(ctx, t0.Add(9*time.Hour))
	require.NoError(t, err)
	plane, err := w.svc.Plane(ctx, "N123AB")
	require.NoError(t, err)
	// 8.87 hours at 2 points per hour.
	assert.InDelta(t, 100-2*31_935.86/3600, plane.Condition, 0.01)
}
