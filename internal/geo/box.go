package geo

import "math"

// Box is a latitude/longitude rectangle. When MinLon > MaxLon the box crosses the
// antimeridian and covers [MinLon, 180] and [-180, MaxLon].
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Wraps reports whether the box crosses the antimeridian.
func (b Box) Wraps() bool { return b.MinLon > b.MaxLon }

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Point) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.Wraps() {
		return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
	}
	return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBox returns a box containing every point within radius meters of center.
// The box is a superset of the circle; callers filter by Distance.
func BoundingBox(center Point, radius float64) Box {
	world := Box{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}
	angular := radius / EarthRadius
	if angular >= math.Pi {
		return world
	}

	spread := degrees(angular)
	b := Box{MinLat: center.Lat - spread, MaxLat: center.Lat + spread}
	if b.MinLat <= -90 || b.MaxLat >= 90 {
		// Circle covers a pole.
		b.MinLat = math.Max(b.MinLat, -90)
		b.MaxLat = math.Min(b.MaxLat, 90)
		b.MinLon, b.MaxLon = -180, 180
		return b
	}

	dLon := degrees(math.Asin(math.Min(1, math.Sin(angular)/math.Cos(radians(center.Lat)))))
	b.MinLon = center.Lon - dLon
	b.MaxLon = center.Lon + dLon
	if b.MinLon < -180 {
		b.MinLon += 360
	}
	if b.MaxLon > 180 {
		b.MaxLon -= 360
	}
	return b
}
