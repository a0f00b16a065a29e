package storage

import (
	"fmt"
	"time"

	"github.com/hongminglow/airfreight/internal/models"
)

// Location kinds persisted in the location_kind columns.
const (
	KindAirport = "airport"
	KindEnRoute = "en_route"
	KindPlane   = "plane"
)

// PlaneLocation is the column form of models.PlaneWhereabouts.
type PlaneLocation struct {
	Kind          string
	AirportID     *string
	OriginID      *string
	DestinationID *string
	DepartedAt    *time.Time
}

// EncodePlane flattens w into columns.
func EncodePlane(w models.PlaneWhereabouts) (PlaneLocation, error) {
	switch v := w.(type) {
	case models.AtAirport:
		return PlaneLocation{Kind: KindAirport, AirportID: &v.AirportID}, nil
	case models.EnRoute:
		dep := v.Departure.UTC()
		return PlaneLocation{Kind: KindEnRoute, OriginID: &v.OriginID, DestinationID: &v.DestinationID, DepartedAt: &dep}, nil
	default:
		return PlaneLocation{}, fmt.Errorf("encode plane whereabouts: unexpected %T", w)
	}
}

// Decode rebuilds the sum type from columns.
func (l PlaneLocation) Decode() (models.PlaneWhereabouts, error) {
	switch l.Kind {
	case KindAirport:
		if l.AirportID == nil {
			return nil, fmt.Errorf("decode plane whereabouts: airport id missing")
		}
		return models.AtAirport{AirportID: *l.AirportID}, nil
	case KindEnRoute:
		if l.OriginID == nil || l.DestinationID == nil || l.DepartedAt == nil {
			return nil, fmt.Errorf("decode plane whereabouts: incomplete flight")
		}
		return models.EnRoute{OriginID: *l.OriginID, DestinationID: *l.DestinationID, Departure: l.DepartedAt.UTC()}, nil
	default:
		return nil, fmt.Errorf("decode plane whereabouts: unknown kind %q", l.Kind)
	}
}

// PackageLocation is the column form of models.PackageWhereabouts.
type PackageLocation struct {
	Kind       string
	AirportID  *string
	TailNumber *string
}

// EncodePackage flattens w into columns.
func EncodePackage(w models.PackageWhereabouts) (PackageLocation, error) {
	switch v := w.(type) {
	case models.AtAirport:
		return PackageLocation{Kind: KindAirport, AirportID: &v.AirportID}, nil
	case models.OnPlane:
		return PackageLocation{Kind: KindPlane, TailNumber: &v.TailNumber}, nil
	default:
		return PackageLocation{}, fmt.Errorf("encode package whereabouts: unexpected %T", w)
	}
}

// Decode rebuilds the sum type from columns.
func (l PackageLocation) Decode() (models.PackageWhereabouts, error) {
	switch l.Kind {
	case KindAirport:
		if l.AirportID == nil {
			return nil, fmt.Errorf("decode package whereabouts: airport id missing")
		}
		return models.AtAirport{AirportID: *l.AirportID}, nil
	case KindPlane:
		if l.TailNumber == nil {
			return nil, fmt.Errorf("decode package whereabouts: tail number missing")
		}
		return models.OnPlane{TailNumber: *l.TailNumber}, nil
	default:
		return nil, fmt.Errorf("decode package whereabouts: unknown kind %q", l.Kind)
	}
}
