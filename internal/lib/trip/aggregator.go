package trip

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"ifta-mileage/internal/lib/attribution"
	"ifta-mileage/internal/lib/states"
)

// ErrNoUsableWaypoints is returned when fewer than two waypoints have
// resolved coordinates, so no leg can be formed.
var ErrNoUsableWaypoints = errors.New("trip has fewer than two resolved waypoints")

// Aggregator runs the full per-trip pipeline: consecutive resolved waypoints
// become legs, each leg's miles are attributed to states through an ordered
// strategy chain, and the per-leg results roll up into trip totals.
type Aggregator struct {
	legs       *LegCalculator
	strategies []attribution.Strategy
	log        *zap.Logger
}

// NewAggregator builds an aggregator. Strategies are tried in the given
// order for each leg; the first non-empty result wins. The chain should end
// with a strategy that always produces a result.
func NewAggregator(legs *LegCalculator, strategies []attribution.Strategy, log *zap.Logger) *Aggregator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{legs: legs, strategies: strategies, log: log}
}

// Analyze processes a trip's waypoints in sheet order. Waypoints without
// coordinates are skipped, never substituted; a leg always connects two
// genuinely resolved stops. Individual leg failures are recorded and the
// rest of the trip still aggregates. The returned error is non-nil only
// when no leg at all could be formed or the context was cancelled.
func (a *Aggregator) Analyze(ctx context.Context, waypoints []Waypoint) (*Trip, error) {
	resolved := make([]Waypoint, 0, len(waypoints))
	for _, wp := range waypoints {
		if wp.Coord == nil || !wp.Coord.Valid() {
			a.log.Warn("skipping unresolved waypoint",
				zap.String("label", wp.Label), zap.String("role", string(wp.Role)))
			continue
		}
		resolved = append(resolved, wp)
	}
	if len(resolved) < 2 {
		return nil, ErrNoUsableWaypoints
	}

	result := &Trip{}
	stateTotals := make(map[string]float64)
	var errMessages []string

	for i := 0; i < len(resolved)-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		leg, err := a.legs.ComputeLeg(ctx, i, resolved[i], resolved[i+1])
		if err != nil {
			leg.Failed = true
			leg.Error = err.Error()
			errMessages = append(errMessages, err.Error())
			result.Legs = append(result.Legs, leg)
			continue
		}

		shares, method := a.attributeLeg(ctx, leg)
		leg.Attribution = shares
		leg.AttributionMethod = method
		for _, s := range shares {
			stateTotals[s.StateCode] += s.Miles
		}

		result.TotalDistanceMiles += leg.DistanceMiles
		result.SuccessfulLegs++
		result.Legs = append(result.Legs, leg)
	}

	result.StateMileage = mileageTable(stateTotals, result.TotalDistanceMiles)

	if result.SuccessfulLegs == 0 {
		result.ErrorSummary = fmt.Sprintf("all %d legs failed", len(result.Legs))
		result.PrimaryError = mostFrequent(errMessages)
	}

	a.log.Info("trip analyzed",
		zap.Int("waypoints", len(resolved)),
		zap.Int("legs", len(result.Legs)),
		zap.Int("successful_legs", result.SuccessfulLegs),
		zap.Float64("total_miles", result.TotalDistanceMiles),
		zap.Int("states", len(result.StateMileage)))

	return result, nil
}

// attributeLeg walks the strategy chain. Strategy errors are logged and
// treated as "try the next tier"; when every tier declines, the whole leg
// lands in the UNKNOWN bucket so miles are never silently dropped.
func (a *Aggregator) attributeLeg(ctx context.Context, leg Leg) ([]attribution.StateShare, string) {
	in := attribution.Input{
		Origin:           *leg.Origin.Coord,
		Destination:      *leg.Destination.Coord,
		OriginState:      leg.Origin.State,
		DestinationState: leg.Destination.State,
		Geometry:         leg.Geometry,
		TotalMiles:       leg.DistanceMiles,
	}

	for _, strat := range a.strategies {
		shares, err := strat.Attribute(ctx, in)
		if err != nil {
			a.log.Warn("attribution strategy failed",
				zap.String("method", strat.Method()),
				zap.Int("leg", leg.Index),
				zap.Error(err))
			continue
		}
		if len(shares) > 0 {
			return shares, strat.Method()
		}
	}

	return []attribution.StateShare{{StateCode: states.Unknown, Miles: leg.DistanceMiles}}, ""
}

// mileageTable converts accumulated per-state miles into the sorted report
// rows with percentages of the trip total.
func mileageTable(totals map[string]float64, tripMiles float64) []StateMileage {
	rows := make([]StateMileage, 0, len(totals))
	for code, miles := range totals {
		row := StateMileage{StateCode: code, Miles: miles}
		if tripMiles > 0 {
			row.Percentage = miles / tripMiles * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Miles != rows[j].Miles {
			return rows[i].Miles > rows[j].Miles
		}
		return rows[i].StateCode < rows[j].StateCode
	})
	return rows
}

// mostFrequent picks the most common message, earliest first on ties, so a
// repeated upstream outage surfaces as the primary cause.
func mostFrequent(messages []string) string {
	if len(messages) == 0 {
		return ""
	}
	counts := make(map[string]int, len(messages))
	first := make(map[string]int, len(messages))
	for i, m := range messages {
		if _, seen := counts[m]; !seen {
			first[m] = i
		}
		counts[m]++
	}
	best := messages[0]
	for m, n := range counts {
		if n > counts[best] || (n == counts[best] && first[m] < first[best]) {
			best = m
		}
	}
	return best
}
