package attribution

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/states"
)

// DefaultMaxSamplePoints caps how many reverse-geocode calls one leg may
// spend; the resolver is a metered remote service.
const DefaultMaxSamplePoints = 20

// Sampler estimates per-state mileage without route geometry by resolving
// sample coordinates along an approximated path to states, then converting
// the resolved sequence into proportional mileage segments over the leg's
// 0..1 progress axis.
type Sampler struct {
	resolver    ReverseGeocoder
	minInterval time.Duration
	maxPoints   int
	corridor    bool
	minMiles    float64
	log         *zap.Logger
}

// NewSampler builds the sampling strategy around a reverse-geocoding
// collaborator. minInterval is the minimum pause between resolution calls.
func NewSampler(resolver ReverseGeocoder, minInterval time.Duration, log *zap.Logger) *Sampler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sampler{
		resolver:    resolver,
		minInterval: minInterval,
		maxPoints:   DefaultMaxSamplePoints,
		minMiles:    DefaultMinMiles,
		log:         log,
	}
}

// WithCorridorBias enables the corridor-aware interpolation heuristic: extra
// midpoints nudged off the straight line to catch state borders near known
// highway corridors. The offset factors are calibration data inherited from
// field use, not derived from road-network geometry.
func (s *Sampler) WithCorridorBias(enabled bool) *Sampler {
	s.corridor = enabled
	return s
}

// WithMaxPoints overrides the sample-point cap.
func (s *Sampler) WithMaxPoints(n int) *Sampler {
	if n > 0 {
		s.maxPoints = n
	}
	return s
}

// WithMinMiles overrides the minimum reportable per-state mileage.
func (s *Sampler) WithMinMiles(miles float64) *Sampler {
	s.minMiles = miles
	return s
}

func (s *Sampler) Method() string { return MethodSampled }

type resolvedSample struct {
	ratio float64
	code  string
}

// Attribute samples the leg and groups resolved states into contiguous runs.
// Returns (nil, nil) when no sample resolves, so the caller can fall back to
// the endpoint split.
func (s *Sampler) Attribute(ctx context.Context, in Input) ([]StateShare, error) {
	if s.resolver == nil || in.TotalMiles <= 0 || !in.Origin.Valid() || !in.Destination.Valid() {
		return nil, nil
	}

	points := s.samplePoints(in.Origin, in.Destination, in.TotalMiles)
	if len(points) < 2 {
		return nil, nil
	}

	var resolved []resolvedSample
	for i, p := range points {
		if i > 0 && s.minInterval > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.minInterval):
			}
		}

		raw, err := s.resolver.StateOf(ctx, p)
		if err != nil {
			s.log.Debug("sample resolution failed",
				zap.Int("sample", i), zap.Error(err))
			continue
		}
		code, ok := states.Normalize(raw)
		if !ok {
			continue
		}
		resolved = append(resolved, resolvedSample{
			ratio: float64(i) / float64(len(points)-1),
			code:  code,
		})
	}

	if len(resolved) == 0 {
		return nil, nil
	}

	totals := make(map[string]float64)
	for _, r := range collapseRuns(resolved) {
		totals[r.code] += (r.end - r.start) * in.TotalMiles
	}

	for code, m := range totals {
		if m < s.minMiles {
			delete(totals, code)
		}
	}
	if len(totals) == 0 {
		return nil, nil
	}

	shares := normalize(sharesFromMap(totals), in.TotalMiles)

	s.log.Debug("sampled attribution",
		zap.Int("samples", len(points)),
		zap.Int("resolved", len(resolved)),
		zap.Int("states", len(shares)))

	return shares, nil
}

// samplePoints generates ordered coordinates between origin and destination.
// Count scales with distance: longer legs cross more state lines and get
// denser sampling.
func (s *Sampler) samplePoints(origin, dest geo.Point, miles float64) []geo.Point {
	var count int
	switch {
	case miles < 100:
		count = 5
	case miles < 500:
		count = 8
	case miles < 1000:
		count = 12
	default:
		count = 15
	}

	base := make([]geo.Point, 0, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count-1)
		base = append(base, geo.Interpolate(origin, dest, t))
	}

	if !s.corridor {
		return base
	}

	// Corridor bias: between consecutive base points, add a midpoint nudged
	// ahead along the local direction of travel. The 0.1/0.5 factors are
	// inherited calibration values.
	enhanced := make([]geo.Point, 0, 2*count)
	for i, p := range base {
		enhanced = append(enhanced, p)
		if i+1 >= len(base) || len(enhanced) >= s.maxPoints {
			continue
		}
		next := base[i+1]
		latOffset := (next.Lat - p.Lat) * 0.1
		lonOffset := (next.Lon - p.Lon) * 0.1
		mid := geo.Point{
			Lat: (p.Lat+next.Lat)/2 + latOffset*0.5,
			Lon: (p.Lon+next.Lon)/2 + lonOffset*0.5,
		}
		enhanced = append(enhanced, mid)
	}

	if len(enhanced) > s.maxPoints {
		enhanced = enhanced[:s.maxPoints]
	}
	return enhanced
}

type stateRun struct {
	code       string
	start, end float64
}

// collapseRuns folds the ordered resolved samples into contiguous same-state
// runs. Transitions fall at the midpoint between the last sample of one
// state and the first sample of the next; the first run starts at 0 and the
// last ends at 1, so run spans always cover the whole leg.
func collapseRuns(resolved []resolvedSample) []stateRun {
	var runs []stateRun
	for i, r := range resolved {
		if len(runs) == 0 || runs[len(runs)-1].code != r.code {
			start := 0.0
			if len(runs) > 0 {
				start = (resolved[i-1].ratio + r.ratio) / 2
				runs[len(runs)-1].end = start
			}
			runs = append(runs, stateRun{code: r.code, start: start})
		}
	}
	runs[len(runs)-1].end = 1.0
	return runs
}
