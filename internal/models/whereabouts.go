package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlaneWhereabouts is either AtAirport or EnRoute.
type PlaneWhereabouts interface {
	planeWhereabouts()
}

// PackageWhereabouts is either AtAirport or OnPlane.
type PackageWhereabouts interface {
	packageWhereabouts()
}

// AtAirport parks a plane or package at an airport.
type AtAirport struct {
	AirportID string
}

// EnRoute is a plane in flight between two airports.
type EnRoute struct {
	OriginID      string
	DestinationID string
	Departure     time.Time
}

// OnPlane is a package carried by the plane with the given tail number.
type OnPlane struct {
	TailNumber string
}

func (AtAirport) planeWhereabouts()   {}
func (AtAirport) packageWhereabouts() {}
func (EnRoute) planeWhereabouts()     {}
func (OnPlane) packageWhereabouts()   {}

const (
	kindAtAirport = "AtAirport"
	kindEnRoute   = "EnRoute"
	kindOnPlane   = "OnPlane"
)

type whereaboutsJSON struct {
	Type          string     `json:"type"`
	AirportID     string     `json:"airportId,omitempty"`
	OriginID      string     `json:"originId,omitempty"`
	DestinationID string     `json:"destinationId,omitempty"`
	Departure     *time.Time `json:"departure,omitempty"`
	TailNumber    string     `json:"tailNumber,omitempty"`
}

func (a AtAirport) MarshalJSON() ([]byte, error) {
	return json.Marshal(whereaboutsJSON{Type: kindAtAirport, AirportID: a.AirportID})
}

func (e EnRoute) MarshalJSON() ([]byte, error) {
	dep := e.Departure.UTC()
	return json.Marshal(whereaboutsJSON{Type: kindEnRoute, OriginID: e.OriginID, DestinationID: e.DestinationID, Departure: &dep})
}

func (o OnPlane) MarshalJSON() ([]byte, error) {
	return json.Marshal(whereaboutsJSON{Type: kindOnPlane, TailNumber: o.TailNumber})
}

func decodePlaneWhereabouts(data []byte) (PlaneWhereabouts, error) {
	var raw whereaboutsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case kindAtAirport:
		return AtAirport{AirportID: raw.AirportID}, nil
	case kindEnRoute:
		var dep time.Time
		if raw.Departure != nil {
			dep = *raw.Departure
		}
		return EnRoute{OriginID: raw.OriginID, DestinationID: raw.DestinationID, Departure: dep}, nil
	default:
		return nil, fmt.Errorf("unknown plane whereabouts %q", raw.Type)
	}
}

func decodePackageWhereabouts(data []byte) (PackageWhereabouts, error) {
	var raw whereaboutsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case kindAtAirport:
		return AtAirport{AirportID: raw.AirportID}, nil
	case kindOnPlane:
		return OnPlane{TailNumber: raw.TailNumber}, nil
	default:
		return nil, fmt.Errorf("unknown package whereabouts %q", raw.Type)
	}
}
