// Package geo implements great-circle math on a spherical Earth.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6_371_000.0

// Point is a position in decimal degrees. It encodes to JSON as [lon, lat].
type Point struct {
	Lat float64
	Lon float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lon, p.Lat})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("geo: point needs [lon, lat], got %d values", len(pair))
	}
	p.Lon, p.Lat = pair[0], pair[1]
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Distance returns the haversine great-circle distance between a and b in meters.
func Distance(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLon := math.Sin(radians(b.Lon-a.Lon) / 2)
	h := math.Min(1, sinLat*sinLat+math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon)
	return 2 * EarthRadius * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ArrivalTime returns when a flight from origin to destination leaving at departure
// arrives when flown at speed m/s.
func ArrivalTime(origin, destination Point, departure time.Time, speed float64) time.Time {
	seconds := Distance(origin, destination) / speed
	return departure.Add(time.Duration(seconds * float64(time.Second)))
}
