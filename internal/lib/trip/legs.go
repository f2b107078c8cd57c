package trip

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ifta-mileage/internal/lib/geo"
)

// Route is a routing provider's answer for one leg: the driven distance and
// the encoded shape, kept encoded until attribution needs it.
type Route struct {
	DistanceMeters   float64
	EncodedPolylines []string
	PolylineScale    float64
}

// Router produces a driving route between two coordinates. Implementations
// wrap remote routing APIs and may fail transiently; the leg calculator
// degrades to a great-circle estimate rather than dropping the leg.
type Router interface {
	Route(ctx context.Context, origin, dest geo.Point) (*Route, error)
}

// LegCalculator turns consecutive waypoint pairs into legs with a distance
// and, when available, route geometry.
type LegCalculator struct {
	router Router
	log    *zap.Logger
}

// NewLegCalculator builds a calculator. The router is optional; without one
// every leg uses the great-circle fallback.
func NewLegCalculator(router Router, log *zap.Logger) *LegCalculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LegCalculator{router: router, log: log}
}

// ComputeLeg measures the leg between two resolved waypoints. A routing
// failure downgrades the leg to a great-circle distance with no geometry;
// the only hard error is an invalid coordinate.
func (c *LegCalculator) ComputeLeg(ctx context.Context, index int, origin, dest Waypoint) (Leg, error) {
	leg := Leg{Index: index, Origin: origin, Destination: dest}

	if origin.Coord == nil || dest.Coord == nil {
		return leg, fmt.Errorf("leg %d: %w", index, geo.ErrInvalidCoordinate)
	}

	if c.router != nil {
		route, err := c.router.Route(ctx, *origin.Coord, *dest.Coord)
		if err == nil && route != nil && route.DistanceMeters > 0 {
			leg.DistanceMiles = route.DistanceMeters / geo.MetersPerMile
			leg.Method = MethodAuthoritative
			leg.Geometry = c.decodeGeometry(route, index)
			return leg, nil
		}
		if err != nil {
			c.log.Warn("routing failed, using great-circle estimate",
				zap.Int("leg", index),
				zap.String("origin", origin.Label),
				zap.String("destination", dest.Label),
				zap.Error(err))
		}
	}

	miles, err := geo.HaversineMiles(*origin.Coord, *dest.Coord)
	if err != nil {
		return leg, fmt.Errorf("leg %d: %w", index, err)
	}
	leg.DistanceMiles = miles
	leg.Method = MethodGreatCircleFallback
	return leg, nil
}

func (c *LegCalculator) decodeGeometry(route *Route, index int) []geo.Path {
	if len(route.EncodedPolylines) == 0 {
		return nil
	}
	scale := route.PolylineScale
	if scale == 0 {
		scale = geo.DefaultPolylineScale
	}
	segments, err := geo.DecodeSegments(route.EncodedPolylines, scale)
	if err != nil {
		c.log.Warn("polyline decode failed, leg keeps distance only",
			zap.Int("leg", index), zap.Error(err))
		return nil
	}
	return segments
}
