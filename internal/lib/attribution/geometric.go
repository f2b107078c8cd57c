package attribution

import (
	"context"

	"go.uber.org/zap"

	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/states"
)

// Intersector measures how much of a route geometry lies inside each state,
// in planar meters. Satisfied by the boundary index.
type Intersector interface {
	IntersectionLengths(segments []geo.Path) map[string]float64
}

// Geometric attributes miles by intersecting the decoded route polyline with
// state boundary polygons. Raw intersection lengths are not trustworthy at
// state-border precision (digitized boundaries are simplified), so the
// result is rescaled to the authoritative routed distance before reporting.
type Geometric struct {
	index    Intersector
	minMiles float64
	log      *zap.Logger
}

// NewGeometric builds the geometric strategy. Construct it only with a
// successfully loaded boundary index; when the dataset is unavailable the
// tier should be left out of the chain entirely.
func NewGeometric(index Intersector, log *zap.Logger) *Geometric {
	if log == nil {
		log = zap.NewNop()
	}
	return &Geometric{index: index, minMiles: DefaultMinMiles, log: log}
}

// WithMinMiles overrides the minimum reportable per-state mileage.
func (g *Geometric) WithMinMiles(miles float64) *Geometric {
	g.minMiles = miles
	return g
}

func (g *Geometric) Method() string { return MethodGeometric }

// Attribute intersects the leg geometry with the boundary index. Returns
// (nil, nil) when there is no geometry, no index, or nothing usable in the
// intersection, so the caller can fall back to sampling.
func (g *Geometric) Attribute(ctx context.Context, in Input) ([]StateShare, error) {
	if g.index == nil || len(in.Geometry) == 0 || in.TotalMiles <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := g.index.IntersectionLengths(in.Geometry)
	if len(raw) == 0 {
		return nil, nil
	}

	var rawTotal float64
	miles := make(map[string]float64, len(raw))
	for code, meters := range raw {
		m := meters / geo.MetersPerMile
		miles[code] = m
		rawTotal += m
	}

	// Boundary-intersection length and the routed distance diverge; rescale
	// so shares sum to the authoritative total.
	if rawTotal > 0 {
		scale := in.TotalMiles / rawTotal
		for code := range miles {
			miles[code] *= scale
		}
	}

	for code, m := range miles {
		if m < g.minMiles || !states.IsContiguous(code) {
			delete(miles, code)
		}
	}
	if len(miles) == 0 {
		return nil, nil
	}

	shares := normalize(sharesFromMap(miles), in.TotalMiles)

	g.log.Debug("geometric attribution",
		zap.Int("states", len(shares)),
		zap.Float64("total_miles", in.TotalMiles))

	return shares, nil
}
