package game

import (
	"context"

	"github.com/hongminglow/airfreight/internal/catalog"
	"github.com/hongminglow/airfreight/internal/models"
	"github.com/hongminglow/airfreight/internal/storage"
)

const (
	// DefaultNearbyRadius applies when a nearby query gives no radius.
	DefaultNearbyRadius = 100_000.0
	// MaxNearbyRadius is roughly half the Earth's circumference.
	MaxNearbyRadius = 20_000_000.0
)

func (s *Service) Airports(ctx context.Context, page storage.Page) ([]models.Airport, error) {
	return s.store.Airports(ctx, page)
}

func (s *Service) Airport(ctx context.Context, id string) (models.Airport, error) {
	return s.airport(ctx, s.store, id)
}

// NearbyAirports lists airports within radius meters of centerID, nearest first,
// excluding the center itself.
func (s *Service) NearbyAirports(ctx context.Context, centerID string, radius float64, page storage.Page) ([]catalog.Neighbor, error) {
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}
	if radius > MaxNearbyRadius {
		return nil, fail(ErrInvalidInput, "radius must not exceed %.0f m", MaxNearbyRadius)
	}
	center, err := s.airport(ctx, s.store, centerID)
	if err != nil {
		return nil, err
	}
	all, err := s.catalog.Nearby(ctx, s.store, center, radius)
	if err != nil {
		return nil, err
	}
	return window(all, page), nil
}

func (s *Service) PlaneModels(ctx context.Context, page storage.Page) ([]models.PlaneModel, error) {
	return s.store.PlaneModels(ctx, page)
}

func (s *Service) PlaneModel(ctx context.Context, id string) (models.PlaneModel, error) {
	return s.planeModel(ctx, s.store, id)
}

func (s *Service) Planes(ctx context.Context, page storage.Page) ([]models.Plane, error) {
	return s.store.Planes(ctx, page)
}

func (s *Service) Plane(ctx context.Context, tailNumber string) (models.Plane, error) {
	return s.plane(ctx, s.store, tailNumber)
}

func (s *Service) Packages(ctx context.Context, page storage.Page) ([]models.Package, error) {
	return s.store.Packages(ctx, page)
}

func (s *Service) Package(ctx context.Context, id string) (models.Package, error) {
	p, err := s.store.Package(ctx, id)
	if err != nil {
		return models.Package{}, notFound(err, "package %q not found", id)
	}
	return p, nil
}

// PackagesAtAirport lists packages waiting at airportID.
func (s *Service) PackagesAtAirport(ctx context.Context, airportID string) ([]models.Package, error) {
	if _, err := s.airport(ctx, s.store, airportID); err != nil {
		return nil, err
	}
	return s.store.PackagesAtAirport(ctx, airportID)
}

// PackagesOnboard lists packages carried by the plane.
func (s *Service) PackagesOnboard(ctx context.Context, tailNumber string) ([]models.Package, error) {
	if _, err := s.plane(ctx, s.store, tailNumber); err != nil {
		return nil, err
	}
	return s.store.PackagesOnboard(ctx, tailNumber)
}

func window[T any](all []T, page storage.Page) []T {
	start := page.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := min(start+page.Size(), len(all))
	return all[start:end]
}
