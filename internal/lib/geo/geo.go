// Package geo provides the geographic primitives shared by the routing and
// attribution code: great-circle distances, linear interpolation along a leg,
// and decoding of encoded route polylines.
package geo

import (
	"errors"
	"math"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle estimates.
const EarthRadiusMiles = 3956.0

// MetersPerMile converts routed distances reported in meters.
const MetersPerMile = 1609.34

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// the WGS84 domain.
var ErrInvalidCoordinate = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// HaversineMiles calculates the great-circle distance between two points in
// statute miles. It fails only on out-of-domain coordinates, so it is safe
// as the terminal fallback for leg distance computation.
func HaversineMiles(p1, p2 Point) (float64, error) {
	if !p1.Valid() || !p2.Valid() {
		return 0, ErrInvalidCoordinate
	}

	if p1.Lat == p2.Lat && p1.Lon == p2.Lon {
		return 0, nil
	}

	lat1 := p1.Lat * math.Pi / 180
	lon1 := p1.Lon * math.Pi / 180
	lat2 := p2.Lat * math.Pi / 180
	lon2 := p2.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusMiles * c, nil
}

// Interpolate returns the point at fraction t along the straight line from
// start to end in latitude/longitude space. t=0 returns start, t=1 returns
// end. Linear interpolation is adequate for continental-US legs; it is not a
// great-circle midpoint.
func Interpolate(start, end Point, t float64) Point {
	return Point{
		Lat: start.Lat + t*(end.Lat-start.Lat),
		Lon: start.Lon + t*(end.Lon-start.Lon),
	}
}

// PathMiles sums the great-circle lengths of consecutive pairs in a path.
func PathMiles(path Path) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		d, err := HaversineMiles(path[i], path[i+1])
		if err != nil {
			continue
		}
		total += d
	}
	return total
}
