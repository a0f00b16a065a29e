package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/airfreight/internal/auth"
	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/config"
	"github.com/hongminglow/airfreight/internal/flight"
	"github.com/hongminglow/airfreight/internal/game"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/models/dto"
	"github.com/hongminglow/airfreight/internal/server"
	"github.com/hongminglow/airfreight/internal/sim"
	"github.com/hongminglow/airfreight/internal/storage/sqlite"
	"github.com/hongminglow/airfreight/internal/storage/storagetest"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type api struct {
	t      *testing.T
	srv    *httptest.Server
	store  *sqlite.Store
	clock  *clock
	tokens *auth.TokenManager
}

func newAPI(t *testing.T) *api {
	t.Helper()
	store := storagetest.Seeded(t)
	cache, err := catalog.New(64)
	require.NoError(t, err)
	clk := &clock{now: t0}

	svc := game.NewService(store, cache, game.DefaultRules(), nil, game.WithClock(clk.Now))
	simulator := sim.NewSimulator(store, cache, sim.SimulatorConfig{Performance: flight.DefaultPerformance()}, nil, nil)
	sched, err := sim.NewScheduler(store, simulator, sim.DefaultSchedulerConfig(), nil)
	require.NoError(t, err)
	require.NoError(t, sched.Init(context.Background(), t0))

	tokens := auth.NewTokenManager("s3cret", "airfreight", time.Hour)
	cfg := config.Config{CORSOrigins: []string{"*"}}
	srv := httptest.NewServer(server.Router(cfg, server.Deps{
		Game:      svc,
		Scheduler: sched,
		Tokens:    tokens,
		Now:       clk.Now,
	}))
	t.Cleanup(srv.Close)
	return &api{t: t, srv: srv, store: store, clock: clk, tokens: tokens}
}

func (a *api) token(user string) string {
	a.t.Helper()
	raw, err := a.tokens.Generate(user, user)
	require.NoError(a.t, err)
	return raw
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *api) do(method, path, token string, body any) envelope {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(a.t, json.NewDecoder(res.Body).Decode(&env))
	require.Equal(a.t, res.StatusCode, env.Code)
	return env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	env := a.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, env.Code)
	h := decodeData[dto.Health](t, env)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, t0.Format(time.RFC3339), h.LastTick)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/nonexistent-route", "", nil).Code)
}

func TestCatalogRoutes(t *testing.T) {
	a := newAPI(t)

	env := a.do(http.MethodGet, "/airports?limit=2&page=1", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	airports := decodeData[[]models.Airport](t, env)
	require.Len(t, airports, 2)
	assert.Equal(t, "EGLL", airports[0].ID)
	assert.Equal(t, "KBOI", airports[1].ID)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports?limit=0", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports?limit=101", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports?page=x", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports?page=9223372036854775807", "", nil).Code)

	env = a.do(http.MethodGet, "/airports/KSLC", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "Salt Lake City International", decodeData[models.Airport](t, env).Name)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/airports/XXXX", "", nil).Code)

	env = a.do(http.MethodGet, "/airports/near/KSLC?radius=1000000&limit=10", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	near := decodeData[[]dto.NearbyAirport](t, env)
	require.Len(t, near, 4)
	assert.Equal(t, "KBOI", near[0].ID)
	assert.InDelta(t, 466_000, near[0].Distance, 5_000)
	for _, n := range near {
		assert.NotEqual(t, "KSLC", n.ID)
	}
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports/near/KSLC?radius=-1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/airports/near/KSLC?radius=30000000", "", nil).Code)

	env = a.do(http.MethodGet, "/plane-models", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Len(t, decodeData[[]models.PlaneModel](t, env), 3)
	env = a.do(http.MethodGet, "/plane-models/c172", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, 3, decodeData[models.PlaneModel](t, env).PassengerSeats)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/plane-models/fake-model", "", nil).Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	a := newAPI(t)
	purchase := dto.PurchasePlaneRequest{TailNumber: "N123AB", Model: "freighter", Airport: "KSLC"}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/planes", "", purchase).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/planes", "forged", purchase).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/me", "", nil).Code)
}

func TestFlightOverHTTP(t *testing.T) {
	a := newAPI(t)
	alice := a.token("alice")

	env := a.do(http.MethodGet, "/me", alice, nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, 100_000.0, decodeData[models.User](t, env).Funds)

	purchase := dto.PurchasePlaneRequest{TailNumber: "N123AB", Model: "freighter", Airport: "KSLC"}
	env = a.do(http.MethodPost, "/planes", alice, purchase)
	require.Equal(t, http.StatusCreated, env.Code, env.Message)
	assert.Equal(t, "alice", decodeData[models.Plane](t, env).OwnerID)

	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/planes", alice, purchase).Code)
	assert.Equal(t, http.StatusPaymentRequired, a.do(http.MethodPost, "/planes", alice,
		dto.PurchasePlaneRequest{TailNumber: "N747AA", Model: "b747", Airport: "KSLC"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/planes", alice,
		dto.PurchasePlaneRequest{TailNumber: "bad", Model: "freighter", Airport: "KSLC"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/planes", alice, map[string]string{"tail": "N1"}).Code)

	require.NoError(t, a.store.InsertPackages(context.Background(), []models.Package{{
		ID: "crate", Name: "crate", Type: models.Cargo, Count: 5, UnitMass: 20, Goal: "KJFK", Payout: 400,
		Expiration: t0.Add(48 * time.Hour), Whereabouts: models.AtAirport{AirportID: "KSLC"},
	}}))

	bob := a.token("bob")
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/packages/crate/load", bob, dto.LoadPackageRequest{Plane: "N123AB"}).Code)
	env = a.do(http.MethodPut, "/packages/crate/load", alice, dto.LoadPackageRequest{Plane: "N123AB"})
	require.Equal(t, http.StatusOK, env.Code, env.Message)

	env = a.do(http.MethodGet, "/packages/onboard/N123AB", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Len(t, decodeData[[]models.Package](t, env), 1)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/packages/onboard/INVALID", "", nil).Code)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, "/planes/N123AB/embark", alice, dto.EmbarkRequest{Destination: "KSLC"}).Code)
	env = a.do(http.MethodPut, "/planes/N123AB/embark", alice, dto.EmbarkRequest{Destination: "KJFK"})
	require.Equal(t, http.StatusOK, env.Code, env.Message)
	assert.IsType(t, models.EnRoute{}, decodeData[models.Plane](t, env).Whereabouts)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPatch, "/planes/N123AB/refuel", alice, dto.RefuelRequest{Amount: 10}).Code)

	// The next request after landing time runs the due ticks first.
	a.clock.Advance(9 * time.Hour)
	env = a.do(http.MethodGet, "/planes/N123AB", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, models.AtAirport{AirportID: "KJFK"}, decodeData[models.Plane](t, env).Whereabouts)

	env = a.do(http.MethodGet, "/users/alice", "", nil)
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, 50_400.0, decodeData[models.User](t, env).Funds)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/packages/crate", "", nil).Code)

	env = a.do(http.MethodPatch, "/planes/N123AB/refuel", alice, dto.RefuelRequest{Amount: 1000})
	require.Equal(t, http.StatusOK, env.Code, env.Message)
	assert.Equal(t, http.StatusOK, a.do(http.MethodPatch, "/planes/N123AB/repair", alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/planes/N123AB", bob, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/planes/N123AB", alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/planes/N123AB", "", nil).Code)
}

func TestUserRoutes(t *testing.T) {
	a := newAPI(t)
	alice, bob := a.token("alice"), a.token("bob")
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/me", alice, nil).Code)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/users/fake-user", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, "/users/alice", bob, dto.UpdateUserRequest{Name: "Mallory"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPut, "/users/alice", alice, dto.UpdateUserRequest{Name: " "}).Code)

	env := a.do(http.MethodPut, "/users/alice", alice, dto.UpdateUserRequest{Name: "Alice L."})
	require.Equal(t, http.StatusOK, env.Code)
	assert.Equal(t, "Alice L.", decodeData[models.User](t, env).Name)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, "/users/alice", bob, nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/users/alice", alice, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/users/alice", "", nil).Code)
}
