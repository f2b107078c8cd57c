package boundaries

import (
	"math"

	"github.com/paulmach/orb"
)

// Conus Albers projection parameters (the standard projection for measuring
// the contiguous US; spherical form). Boundary polygons and route geometry
// are both projected through this before any length is computed, because
// degree-based lengths are not physically meaningful.
const (
	albersRadius = 6378137.0
	albersLat0   = 23.0 * math.Pi / 180
	albersLon0   = -96.0 * math.Pi / 180
	albersPhi1   = 29.5 * math.Pi / 180
	albersPhi2   = 45.5 * math.Pi / 180
)

var (
	albersN    = (math.Sin(albersPhi1) + math.Sin(albersPhi2)) / 2
	albersC    = math.Cos(albersPhi1)*math.Cos(albersPhi1) + 2*albersN*math.Sin(albersPhi1)
	albersRho0 = albersRadius / albersN * math.Sqrt(albersC-2*albersN*math.Sin(albersLat0))
)

// conusAlbers projects a WGS84 point (lon, lat in degrees) to planar meters.
// It satisfies orb.Projection.
func conusAlbers(p orb.Point) orb.Point {
	lon := p[0] * math.Pi / 180
	lat := p[1] * math.Pi / 180

	rho := albersRadius / albersN * math.Sqrt(albersC-2*albersN*math.Sin(lat))
	theta := albersN * (lon - albersLon0)

	x := rho * math.Sin(theta)
	y := albersRho0 - rho*math.Cos(theta)

	return orb.Point{x, y}
}
