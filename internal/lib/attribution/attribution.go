// Package attribution assigns a leg's driven miles to the US states its
// route traverses. Three strategies are provided, in descending order of
// confidence: geometric (route geometry against state boundary polygons),
// sampled (reverse-geocoded points along an approximated path), and an
// endpoint split. Callers hold an ordered strategy chain and accept the
// first non-empty result.
package attribution

import (
	"context"
	"sort"

	"ifta-mileage/internal/lib/geo"
)

// Attribution method names, recorded on each leg so operators can tell
// high-confidence mileage from best-effort estimates.
const (
	MethodGeometric     = "geometric"
	MethodSampled       = "sampled"
	MethodFallbackSplit = "fallback_split"
)

// DefaultMinMiles is the minimum per-state mileage worth reporting. Brief
// border crossings below this are polygon-simplification noise, not
// traversed states.
const DefaultMinMiles = 1.0

// StateShare is one state's portion of a leg's distance.
type StateShare struct {
	StateCode string  `json:"state_code"`
	Miles     float64 `json:"miles"`
}

// Input carries everything a strategy may need for one leg. Geometry is nil
// when the routing provider returned no polyline; state hints are optional
// and come from the waypoint location strings.
type Input struct {
	Origin           geo.Point
	Destination      geo.Point
	OriginState      string
	DestinationState string
	Geometry         []geo.Path
	TotalMiles       float64
}

// Strategy attributes a leg's miles across states. A (nil, nil) result
// means the strategy cannot handle this input and the caller should try the
// next tier; an error is treated the same way after logging.
type Strategy interface {
	Method() string
	Attribute(ctx context.Context, in Input) ([]StateShare, error)
}

// ReverseGeocoder resolves a coordinate to a US state code. Implementations
// are typically metered remote services.
type ReverseGeocoder interface {
	StateOf(ctx context.Context, p geo.Point) (string, error)
}

func sumShares(shares []StateShare) float64 {
	var total float64
	for _, s := range shares {
		total += s.Miles
	}
	return total
}

// normalize rescales shares so they sum to target, keeping the leg
// conservation invariant after thresholds and domain filters have removed
// slivers.
func normalize(shares []StateShare, target float64) []StateShare {
	total := sumShares(shares)
	if total <= 0 || target <= 0 {
		return shares
	}
	scale := target / total
	for i := range shares {
		shares[i].Miles *= scale
	}
	return shares
}

// sharesFromMap converts an accumulator into a deterministic share list,
// sorted descending by miles with state code as tie-break.
func sharesFromMap(m map[string]float64) []StateShare {
	shares := make([]StateShare, 0, len(m))
	for code, miles := range m {
		shares = append(shares, StateShare{StateCode: code, Miles: miles})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Miles != shares[j].Miles {
			return shares[i].Miles > shares[j].Miles
		}
		return shares[i].StateCode < shares[j].StateCode
	})
	return shares
}
