// Package catalog caches immutable reference data: plane models, airports and the
// distance-ordered neighbor lists used by the spawner and nearby queries.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

// DefaultSize is the per-kind entry limit used when New is given a non-positive size.
const DefaultSize = 4096

// Neighbor is an airport and its distance in meters from a reference airport.
type Neighbor struct {
	Airport  models.Airport `json:"airport"`
	Distance float64        `json:"distance_m"`
}

type neighborKey struct {
	center string
	radius float64
}

// Cache fronts a storage.Reader. Every method takes the reader to consult on a miss so
// callers inside a transaction read through their own transaction.
type Cache struct {
	planeModels *lru.Cache[string, models.PlaneModel]
	airports    *lru.Cache[string, models.Airport]
	neighbors   *lru.Cache[neighborKey, []Neighbor]
}

// New builds a cache holding up to size entries of each kind.
func New(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	pm, err := lru.New[string, models.PlaneModel](size)
	if err != nil {
		return nil, fmt.Errorf("catalog: plane model cache: %w", err)
	}
	ap, err := lru.New[string, models.Airport](size)
	if err != nil {
		return nil, fmt.Errorf("catalog: airport cache: %w", err)
	}
	nb, err := lru.New[neighborKey, []Neighbor](size)
	if err != nil {
		return nil, fmt.Errorf("catalog: neighbor cache: %w", err)
	}
	return &Cache{planeModels: pm, airports: ap, neighbors: nb}, nil
}

// PlaneModel returns the model with the given id.
func (c *Cache) PlaneModel(ctx context.Context, r storage.Reader, id string) (models.PlaneModel, error) {
	if m, ok := c.planeModels.Get(id); ok {
		return m, nil
	}
	m, err := r.PlaneModel(ctx, id)
	if err != nil {
		return models.PlaneModel{}, err
	}
	c.planeModels.Add(id, m)
	return m, nil
}

// Airport returns the airport with the given id.
func (c *Cache) Airport(ctx context.Context, r storage.Reader, id string) (models.Airport, error) {
	if a, ok := c.airports.Get(id); ok {
		return a, nil
	}
	a, err := r.Airport(ctx, id)
	if err != nil {
		return models.Airport{}, err
	}
	c.airports.Add(id, a)
	return a, nil
}

// Nearby returns every airport other than center within radius meters, nearest first.
// Ties are broken by id. The returned slice is shared and must not be modified.
func (c *Cache) Nearby(ctx context.Context, r storage.Reader, center models.Airport, radius float64) ([]Neighbor, error) {
	key := neighborKey{center: center.ID, radius: radius}
	if n, ok := c.neighbors.Get(key); ok {
		return n, nil
	}

	candidates, err := r.AirportsInBox(ctx, geo.BoundingBox(center.Location, radius))
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, 0, len(candidates))
	for _, a := range candidates {
		if a.ID == center.ID {
			continue
		}
		d := geo.Distance(center.Location, a.Location)
		if d > radius {
			continue
		}
		out = append(out, Neighbor{Airport: a, Distance: d})
	}
	slices.SortFunc(out, func(a, b Neighbor) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Airport.ID, b.Airport.ID)
	})

	c.neighbors.Add(key, out)
	return out, nil
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.planeModels.Purge()
	c.airports.Purge()
	c.neighbors.Purge()
}

// PurgeOn purges the cache each time a signal arrives on reload, so a catalog
// reseeded by another process is picked up. It returns when ctx is done.
func (c *Cache) PurgeOn(ctx context.Context, reload <-chan os.Signal, log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-reload:
			c.Purge()
			log.Info("catalog cache purged", zap.Stringer("signal", sig))
		}
	}
}
