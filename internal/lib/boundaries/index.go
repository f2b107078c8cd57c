// Package boundaries loads a GeoJSON dataset of US state polygons into a
// queryable index and measures how much of a route geometry falls inside
// each state. Lengths are computed in projected planar meters.
package boundaries

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"ifta-mileage/internal/lib/geo"
)

// ErrDatasetUnavailable signals that the boundary dataset is missing or
// malformed. Callers with no boundary-data fallback of their own should
// disable the geometric tier rather than retry.
var ErrDatasetUnavailable = errors.New("state boundary dataset unavailable")

// codeProperty is the state-code attribute in Census cartographic boundary
// files.
const codeProperty = "STUSPS"

// sampleStepMeters bounds the stepping interval when measuring per-state
// route length. Smaller steps cost more point-in-polygon tests.
const sampleStepMeters = 1000.0

type entry struct {
	code  string
	geom  orb.MultiPolygon // projected, planar meters
	bound orb.Bound
}

// Index is a read-only collection of projected state polygons. It is safe
// for concurrent use once loaded.
type Index struct {
	entries []entry
}

var (
	sharedOnce sync.Once
	sharedIdx  *Index
	sharedErr  error
)

// Shared loads the process-wide boundary index on first call and memoizes
// the result, including failure: a missing dataset disables the geometric
// tier for the process lifetime.
func Shared(path string) (*Index, error) {
	sharedOnce.Do(func() {
		sharedIdx, sharedErr = Load(path)
	})
	return sharedIdx, sharedErr
}

// Load parses a GeoJSON FeatureCollection of state polygons and projects
// every polygon to planar coordinates. Parsing the full national dataset is
// expensive; callers should prefer Shared.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDatasetUnavailable, path, err)
	}
	return Parse(data)
}

// Parse builds an index from raw GeoJSON bytes.
func Parse(data []byte) (*Index, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse geojson: %v", ErrDatasetUnavailable, err)
	}

	idx := &Index{}
	for _, f := range fc.Features {
		code := f.Properties.MustString(codeProperty, "")
		if len(code) != 2 {
			continue
		}

		var mp orb.MultiPolygon
		switch g := project.Geometry(f.Geometry, conusAlbers).(type) {
		case orb.Polygon:
			mp = orb.MultiPolygon{g}
		case orb.MultiPolygon:
			mp = g
		default:
			continue
		}

		idx.entries = append(idx.entries, entry{code: code, geom: mp, bound: mp.Bound()})
	}

	if len(idx.entries) == 0 {
		return nil, fmt.Errorf("%w: no state polygons in dataset", ErrDatasetUnavailable)
	}

	return idx, nil
}

// Len returns the number of state polygons loaded.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// IntersectionLengths measures, in planar meters, how much of the given
// multi-segment route falls inside each state. The route is projected and
// walked in steps of at most sampleStepMeters; each step's length is
// credited to the state containing its midpoint. Points outside every
// polygon (water, border slivers in simplified data) credit no state.
func (idx *Index) IntersectionLengths(segments []geo.Path) map[string]float64 {
	lengths := make(map[string]float64)

	for _, seg := range segments {
		if len(seg) < 2 {
			continue
		}

		projected := make([]orb.Point, len(seg))
		for i, p := range seg {
			projected[i] = conusAlbers(orb.Point{p.Lon, p.Lat})
		}

		for i := 0; i+1 < len(projected); i++ {
			a, b := projected[i], projected[i+1]
			segLen := planar.Distance(a, b)
			if segLen <= 0 {
				continue
			}

			steps := int(math.Ceil(segLen / sampleStepMeters))
			if steps < 1 {
				steps = 1
			}
			stepLen := segLen / float64(steps)

			for s := 0; s < steps; s++ {
				t := (float64(s) + 0.5) / float64(steps)
				mid := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
				if code := idx.stateAt(mid); code != "" {
					lengths[code] += stepLen
				}
			}
		}
	}

	return lengths
}

func (idx *Index) stateAt(p orb.Point) string {
	for i := range idx.entries {
		e := &idx.entries[i]
		if !e.bound.Contains(p) {
			continue
		}
		if planar.MultiPolygonContains(e.geom, p) {
			return e.code
		}
	}
	return ""
}
