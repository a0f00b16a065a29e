package geo

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	kslc = Point{Lat: 40.7884, Lon: -111.9778}
	kjfk = Point{Lat: 40.6398, Lon: -73.7789}
	kden = Point{Lat: 39.8561, Lon: -104.6737}
)

func TestDistanceSymmetricAndZero(t *testing.T) {
	points := []Point{kslc, kjfk, kden, {Lat: -33.9461, Lon: 151.1772}, {Lat: 0, Lon: 0}, {Lat: 89.9, Lon: 10}}
	for _, a := range points {
		assert.Zero(t, Distance(a, a))
		for _, b := range points {
			assert.Equal(t, Distance(a, b), Distance(b, a))
			if a != b {
				assert.Positive(t, Distance(a, b))
			}
		}
	}
}

func TestDistanceKnownRoute(t *testing.T) {
	assert.InDelta(t, 3_193_586, Distance(kslc, kjfk), 1)
	assert.InDelta(t, 627_642, Distance(kslc, kden), 1)
}

func TestDistanceAntipodal(t *testing.T) {
	for _, p := range []Point{kslc, kjfk, {Lat: 0, Lon: 0}, {Lat: 12.3456789, Lon: 98.7654321}} {
		anti := Point{Lat: -p.Lat, Lon: p.Lon + 180}
		if anti.Lon > 180 {
			anti.Lon -= 360
		}
		d := Distance(p, anti)
		assert.False(t, math.IsNaN(d), "antipode of %v", p)
		assert.InDelta(t, math.Pi*EarthRadius, d, 1)
	}
}

func TestArrivalTimeMonotonic(t *testing.T) {
	dep := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	near := ArrivalTime(kslc, kden, dep, 100)
	far := ArrivalTime(kslc, kjfk, dep, 100)
	assert.True(t, far.After(near), "longer route should arrive later")

	slow := ArrivalTime(kslc, kjfk, dep, 100)
	fast := ArrivalTime(kslc, kjfk, dep, 250)
	assert.True(t, fast.Before(slow), "faster plane should arrive sooner")

	assert.InDelta(t, 31_935.86, slow.Sub(dep).Seconds(), 0.01)
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	cases := []struct {
		name   string
		center Point
		radius float64
	}{
		{"mid latitude", kslc, 2_000_000},
		{"antimeridian", Point{Lat: 52, Lon: 178}, 1_000_000},
		{"polar", Point{Lat: 85, Lon: 0}, 800_000},
		{"whole earth", kjfk, 21_000_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			box := BoundingBox(tc.center, tc.radius)
			for lat := -90.0; lat <= 90; lat += 2.5 {
				for lon := -180.0; lon <= 180; lon += 2.5 {
					p := Point{Lat: lat, Lon: lon}
					if Distance(tc.center, p) <= tc.radius {
						require.True(t, box.Contains(p), "box %+v misses %+v", box, p)
					}
				}
			}
		})
	}
}

func TestBoundingBoxWraps(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lon: 179}, 500_000)
	assert.True(t, box.Wraps())
	assert.True(t, box.Contains(Point{Lat: 0, Lon: -179}))
	assert.False(t, box.Contains(Point{Lat: 0, Lon: 0}))
}

func TestPointJSON(t *testing.T) {
	raw, err := json.Marshal(kslc)
	require.NoError(t, err)
	assert.JSONEq(t, `[-111.9778, 40.7884]`, string(raw))

	var p Point
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, kslc, p)
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &p))
}
