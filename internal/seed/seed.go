// Package seed reads the reference catalog: airports from an OurAirports style CSV
// and plane models from JSON.
package seed

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hongminglow/airfreight/internal/geo"
	"github.com/hongminglow/airfreight/internal/models"
)

const feetToMeters = 0.3048

var requiredColumns = []string{"ident", "name", "latitude_deg", "longitude_deg", "elevation_ft"}

var runwayColumns = []string{"runway_length_ft", "runway_width_ft", "runway_lighted"}

// Airports parses r. Rows with an empty ident are skipped.
func Airports(r io.Reader) ([]models.Airport, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("airports: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("airports: missing column %q", c)
		}
	}

	var out []models.Airport
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("airports: line %d: %w", line, err)
		}
		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id := field("ident")
		if id == "" {
			continue
		}
		lat, err := number(field("latitude_deg"))
		if err != nil {
			return nil, fmt.Errorf("airports: line %d: latitude: %w", line, err)
		}
		lon, err := number(field("longitude_deg"))
		if err != nil {
			return nil, fmt.Errorf("airports: line %d: longitude: %w", line, err)
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return nil, fmt.Errorf("airports: line %d: %s is off the globe", line, id)
		}
		elevation, err := number(field("elevation_ft"))
		if err != nil {
			return nil, fmt.Errorf("airports: line %d: elevation: %w", line, err)
		}

		airport := models.Airport{
			ID:         id,
			Name:       field("name"),
			Location:   geo.Point{Lat: lat, Lon: lon},
			ElevationM: elevation * feetToMeters,
		}
		if airport.Runway, err = runway(field); err != nil {
			return nil, fmt.Errorf("airports: line %d: %w", line, err)
		}
		out = append(out, airport)
	}
}

func runway(field func(string) string) (models.Runway, error) {
	length, err := number(field(runwayColumns[0]))
	if err != nil {
		return models.Runway{}, fmt.Errorf("runway length: %w", err)
	}
	width, err := number(field(runwayColumns[1]))
	if err != nil {
		return models.Runway{}, fmt.Errorf("runway width: %w", err)
	}
	lighted := false
	switch strings.ToLower(field(runwayColumns[2])) {
	case "1", "true", "yes":
		lighted = true
	}
	return models.Runway{LengthM: length * feetToMeters, WidthM: width * feetToMeters, Lighted: lighted}, nil
}

// number parses a float, treating empty and NA as zero.
func number(s string) (float64, error) {
	if s == "" || s == "NA" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// PlaneModels decodes a JSON array of plane models and checks each is flyable.
func PlaneModels(r io.Reader) ([]models.PlaneModel, error) {
	var out []models.PlaneModel
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("plane models: %w", err)
	}
	seen := make(map[string]bool, len(out))
	for i, m := range out {
		switch {
		case m.ID == "":
			return nil, fmt.Errorf("plane models: entry %d has no id", i)
		case seen[m.ID]:
			return nil, fmt.Errorf("plane models: duplicate id %q", m.ID)
		case m.CruiseSpeed <= 0 || m.FuelBurn <= 0:
			return nil, fmt.Errorf("plane models: %s needs a positive cruise speed and fuel burn", m.ID)
		case m.Cost < 0 || m.FuelCapacity < 0 || m.CargoCapacity < 0 || m.PassengerSeats < 0:
			return nil, fmt.Errorf("plane models: %s has a negative figure", m.ID)
		}
		seen[m.ID] = true
	}
	return out, nil
}
