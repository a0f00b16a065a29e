package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAirports(t *testing.T) {
	const data = `id,ident,type,name,latitude_deg,longitude_deg,elevation_ft,runway_length_ft,runway_width_ft,runway_lighted
1,KSLC,large_airport,Salt Lake City International,40.7884,-111.9778,4227,12000,150,1
2,,heliport,Nameless,0,0,,,,
3,EGLL,large_airport,London Heathrow,51.4706,-0.461941,83,NA,,0
`
	airports, err := Airports(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, airports, 2)

	slc := airports[0]
	assert.Equal(t, "KSLC", slc.ID)
	assert.Equal(t, "Salt Lake City International", slc.Name)
	assert.Equal(t, 40.7884, slc.Location.Lat)
	assert.Equal(t, -111.9778, slc.Location.Lon)
	assert.InDelta(t, 1288.4, slc.ElevationM, 0.1)
	assert.InDelta(t, 3657.6, slc.Runway.LengthM, 0.1)
	assert.True(t, slc.Runway.Lighted)

	assert.Equal(t, "EGLL", airports[1].ID)
	assert.Zero(t, airports[1].Runway.LengthM)
	assert.False(t, airports[1].Runway.Lighted)
}

func TestAirportsRejects(t *testing.T) {
	_, err := Airports(strings.NewReader("ident,name,latitude_deg\nKSLC,x,1\n"))
	assert.ErrorContains(t, err, "longitude_deg")

	_, err = Airports(strings.NewReader("ident,name,latitude_deg,longitude_deg,elevation_ft\nKSLC,x,north,1,1\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = Airports(strings.NewReader("ident,name,latitude_deg,longitude_deg,elevation_ft\nKSLC,x,91,1,1\n"))
	assert.ErrorContains(t, err, "off the globe")
}

func TestPlaneModels(t *testing.T) {
	planeModels, err := PlaneModels(strings.NewReader(`[
		{"id":"c172","name":"Cessna 172","baseCruise":60,"cost":30000,"cargoCapacity":300,
		 "baseFuelBurn":0.012,"fuelCapacity":150,"passengerSeats":3}
	]`))
	require.NoError(t, err)
	require.Len(t, planeModels, 1)
	assert.Equal(t, 60.0, planeModels[0].CruiseSpeed)
	assert.Equal(t, 3, planeModels[0].PassengerSeats)

	_, err = PlaneModels(strings.NewReader(`[{"id":"a","baseCruise":1,"baseFuelBurn":1},{"id":"a","baseCruise":1,"baseFuelBurn":1}]`))
	assert.ErrorContains(t, err, "duplicate")
	_, err = PlaneModels(strings.NewReader(`[{"id":"a","baseCruise":0,"baseFuelBurn":1}]`))
	assert.ErrorContains(t, err, "positive")
	_, err = PlaneModels(strings.NewReader(`[{"id":"a","speed":1}]`))
	assert.Error(t, err)
}
