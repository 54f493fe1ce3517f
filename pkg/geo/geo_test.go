package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversine(t *testing.T) {
	sf := Point{Lat: 37.7749, Lon: -122.4194}
	la := Point{Lat: 34.0522, Lon: -118.2437}

	assert.InDelta(t, 559.12, Haversine(sf, la), 0.01)
	assert.InDelta(t, 111.195, Haversine(Point{}, Point{Lon: 1}), 0.001)
	assert.InDelta(t, Haversine(sf, la), Haversine(la, sf), 1e-9)
	assert.Equal(t, 0.0, Haversine(sf, sf))
}

func TestWithinRadiusBoundary(t *testing.T) {
	center := Point{}
	post := Point{Lat: 5.0362}

	require.InDelta(t, 560.0, Haversine(center, post), 0.05)
	assert.False(t, Within(center, post, 500))
	assert.True(t, Within(center, post, 600))
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	cases := []struct {
		name   string
		center Point
		radius float64
		probe  Point
	}{
		{"simple", Point{Lat: 37.7749, Lon: -122.4194}, 600, Point{Lat: 34.0522, Lon: -118.2437}},
		{"antimeridian east", Point{Lat: 0, Lon: 179.5}, 200, Point{Lat: 0, Lon: -179.5}},
		{"antimeridian west", Point{Lat: 0, Lon: -179.5}, 200, Point{Lat: 0, Lon: 179.5}},
		{"pole", Point{Lat: 89.5}, 200, Point{Lat: 89.9, Lon: 120}},
		{"zero radius", Point{Lat: 10, Lon: 10}, 0, Point{Lat: 10, Lon: 10}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, Within(tc.center, tc.probe, tc.radius))
			assert.True(t, BoundingBox(tc.center, tc.radius).Contains(tc.probe))
		})
	}
}

func TestBoundingBoxExcludesFarPoints(t *testing.T) {
	box := BoundingBox(Point{Lat: 37.7749, Lon: -122.4194}, 100)

	assert.False(t, box.Contains(Point{Lat: 34.0522, Lon: -118.2437}))
	assert.Len(t, box.Lon, 1)
}

func TestBoundingBoxSplitsAtAntimeridian(t *testing.T) {
	box := BoundingBox(Point{Lat: 0, Lon: 179.5}, 200)

	require.Len(t, box.Lon, 2)
	assert.Equal(t, 180.0, box.Lon[0].Max)
	assert.Equal(t, -180.0, box.Lon[1].Min)
}

func TestBoundingBoxWholeEarth(t *testing.T) {
	box := BoundingBox(Point{}, 30000)

	assert.Equal(t, -90.0, box.MinLat)
	assert.Equal(t, 90.0, box.MaxLat)
	assert.Empty(t, box.Lon)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 90, Lon: -180}.Valid())
	assert.False(t, Point{Lat: 91}.Valid())
	assert.False(t, Point{Lon: 181}.Valid())
}
