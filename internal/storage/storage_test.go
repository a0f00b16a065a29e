package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/airfreight/internal/models"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Limit: 10, Page: 1}, NewPage(0, 0))
	assert.Equal(t, Page{Limit: 100, Page: 3}, NewPage(500, 3))
	assert.Equal(t, Page{Limit: 25, Page: 1}, NewPage(25, -2))
	assert.Equal(t, 50, Page{Limit: 25, Page: 3}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
	assert.Equal(t, 10, Page{}.Size())

	huge := Page{Limit: MaxLimit, Page: int(^uint(0) >> 1)}
	assert.Equal(t, MaxPage, NewPage(huge.Limit, huge.Page).Page)
	assert.Equal(t, (MaxPage-1)*MaxLimit, huge.Offset())
}

func TestPlaneLocationRoundTrip(t *testing.T) {
	dep := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
	for _, w := range []models.PlaneWhereabouts{
		models.AtAirport{AirportID: "KSLC"},
		models.EnRoute{OriginID: "KSLC", DestinationID: "KJFK", Departure: dep},
	} {
		loc, err := EncodePlane(w)
		require.NoError(t, err)
		got, err := loc.Decode()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := PlaneLocation{Kind: KindEnRoute}.Decode()
	assert.Error(t, err)
	_, err = EncodePlane(nil)
	assert.Error(t, err)
}

func TestPackageLocationRoundTrip(t *testing.T) {
	for _, w := range []models.PackageWhereabouts{
		models.AtAirport{AirportID: "KJFK"},
		models.OnPlane{TailNumber: "N123AB"},
	} {
		loc, err := EncodePackage(w)
		require.NoError(t, err)
		got, err := loc.Decode()
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := PackageLocation{Kind: "teleported"}.Decode()
	assert.Error(t, err)
}
