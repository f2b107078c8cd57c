package attribution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifta-mileage/internal/lib/geo"
)

type stubIntersector struct {
	lengths map[string]float64
}

func (s stubIntersector) IntersectionLengths(segments []geo.Path) map[string]float64 {
	return s.lengths
}

func milesToMeters(miles float64) float64 { return miles * geo.MetersPerMile }

func geometricInput(totalMiles float64) Input {
	return Input{
		Origin:      geo.Point{Lat: 34.0, Lon: -117.4},
		Destination: geo.Point{Lat: 32.7, Lon: -96.8},
		Geometry:    []geo.Path{{{Lat: 34.0, Lon: -117.4}, {Lat: 32.7, Lon: -96.8}}},
		TotalMiles:  totalMiles,
	}
}

func TestGeometric_RescalesToAuthoritativeTotal(t *testing.T) {
	// Raw intersection finds 1200 miles of route but the routed distance is
	// 1250; shares must rescale proportionally.
	g := NewGeometric(stubIntersector{lengths: map[string]float64{
		"NM": milesToMeters(700),
		"CA": milesToMeters(300),
		"AZ": milesToMeters(200),
	}}, nil)

	shares, err := g.Attribute(context.Background(), geometricInput(1250))
	require.NoError(t, err)
	require.Len(t, shares, 3)

	// Sorted descending by miles.
	assert.Equal(t, "NM", shares[0].StateCode)
	assert.Equal(t, "CA", shares[1].StateCode)
	assert.Equal(t, "AZ", shares[2].StateCode)

	assert.InDelta(t, 700.0*1250/1200, shares[0].Miles, 1e-6)
	assert.InDelta(t, 300.0*1250/1200, shares[1].Miles, 1e-6)
	assert.InDelta(t, 200.0*1250/1200, shares[2].Miles, 1e-6)
	assert.InDelta(t, 1250, sumShares(shares), 1e-6)
}

func TestGeometric_FiltersSliversAndKeepsTotal(t *testing.T) {
	// A half-mile border clip is polygon noise; after dropping it the
	// remaining shares still sum to the leg total.
	g := NewGeometric(stubIntersector{lengths: map[string]float64{
		"CA": milesToMeters(599.5),
		"NV": milesToMeters(0.5),
	}}, nil)

	shares, err := g.Attribute(context.Background(), geometricInput(600))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "CA", shares[0].StateCode)
	assert.InDelta(t, 600, shares[0].Miles, 1e-6)
}

func TestGeometric_FiltersNonContiguous(t *testing.T) {
	g := NewGeometric(stubIntersector{lengths: map[string]float64{
		"WA": milesToMeters(200),
		"AK": milesToMeters(50),
	}}, nil)

	shares, err := g.Attribute(context.Background(), geometricInput(250))
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "WA", shares[0].StateCode)
	assert.InDelta(t, 250, shares[0].Miles, 1e-6)
}

func TestGeometric_DeclinesWithoutGeometry(t *testing.T) {
	g := NewGeometric(stubIntersector{lengths: map[string]float64{"CA": 1000}}, nil)

	in := geometricInput(100)
	in.Geometry = nil

	shares, err := g.Attribute(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, shares)
}

func TestGeometric_DeclinesOnEmptyIntersection(t *testing.T) {
	g := NewGeometric(stubIntersector{lengths: nil}, nil)

	shares, err := g.Attribute(context.Background(), geometricInput(100))
	require.NoError(t, err)
	assert.Nil(t, shares)
}

func TestGeometric_Method(t *testing.T) {
	assert.Equal(t, MethodGeometric, NewGeometric(nil, nil).Method())
}
