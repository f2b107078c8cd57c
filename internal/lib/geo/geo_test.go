package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMiles_KnownDistance(t *testing.T) {
	// Los Angeles to New York, roughly 2445 miles great circle.
	la := Point{Lat: 34.0522, Lon: -118.2437}
	ny := Point{Lat: 40.7128, Lon: -74.0060}

	miles, err := HaversineMiles(la, ny)
	require.NoError(t, err)
	assert.InDelta(t, 2445, miles, 15)
}

func TestHaversineMiles_SamePoint(t *testing.T) {
	p := Point{Lat: 34.0522, Lon: -118.2437}

	miles, err := HaversineMiles(p, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, miles)
}

func TestHaversineMiles_Symmetric(t *testing.T) {
	a := Point{Lat: 35.0, Lon: -117.0}
	b := Point{Lat: 32.7, Lon: -96.8}

	ab, err := HaversineMiles(a, b)
	require.NoError(t, err)
	ba, err := HaversineMiles(b, a)
	require.NoError(t, err)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestHaversineMiles_InvalidCoordinate(t *testing.T) {
	valid := Point{Lat: 34.0, Lon: -118.0}
	invalid := Point{Lat: 91.0, Lon: -118.0}

	_, err := HaversineMiles(valid, invalid)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = HaversineMiles(Point{Lat: 34.0, Lon: -181.0}, valid)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestInterpolate(t *testing.T) {
	a := Point{Lat: 30.0, Lon: -110.0}
	b := Point{Lat: 40.0, Lon: -100.0}

	assert.Equal(t, a, Interpolate(a, b, 0))
	assert.Equal(t, b, Interpolate(a, b, 1))

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 35.0, mid.Lat, 1e-9)
	assert.InDelta(t, -105.0, mid.Lon, 1e-9)
}

func TestPathMiles(t *testing.T) {
	assert.Equal(t, 0.0, PathMiles(nil))
	assert.Equal(t, 0.0, PathMiles(Path{{Lat: 34.0, Lon: -118.0}}))

	// A two-hop path should sum both hops.
	path := Path{
		{Lat: 34.0522, Lon: -118.2437},
		{Lat: 36.1699, Lon: -115.1398},
		{Lat: 33.4484, Lon: -112.0740},
	}
	first, err := HaversineMiles(path[0], path[1])
	require.NoError(t, err)
	second, err := HaversineMiles(path[1], path[2])
	require.NoError(t, err)

	assert.InDelta(t, first+second, PathMiles(path), 1e-9)
}

func TestPointValid(t *testing.T) {
	assert.True(t, Point{Lat: 0, Lon: 0}.Valid())
	assert.True(t, Point{Lat: -90, Lon: 180}.Valid())
	assert.False(t, Point{Lat: 90.1, Lon: 0}.Valid())
	assert.False(t, Point{Lat: 0, Lon: -180.1}.Valid())
}
