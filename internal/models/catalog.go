package models

import "github.com/hongminglow/airfreight/internal/geo"

// PlaneModel is catalog data shared by every plane of the type. Speeds are in m/s,
// masses in kg and burn rates in kg/s.
type PlaneModel struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	CruiseSpeed    float64 `json:"baseCruise"`
	Cost           float64 `json:"cost"`
	CargoCapacity  float64 `json:"cargoCapacity"`
	FuelBurn       float64 `json:"baseFuelBurn"`
	FuelCapacity   float64 `json:"fuelCapacity"`
	PassengerSeats int     `json:"passengerSeats"`
}

// Runway describes the longest runway of an airport.
type Runway struct {
	LengthM float64 `json:"length_m"`
	WidthM  float64 `json:"width_m"`
	Lighted bool    `json:"lighted"`
}

// Airport is identified by its ICAO-style code.
type Airport struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   geo.Point `json:"location"`
	ElevationM float64   `json:"elevation_m"`
	Runway     Runway    `json:"runway"`
}
