package geo

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-polyline"
)

// DefaultPolylineScale is the Google Maps polyline precision (1e-5 degrees).
// Some providers encode at 1e6; pass that scale to DecodePolylineScale.
const DefaultPolylineScale = 1e5

// ErrEmptyPolyline is returned when an encoded polyline string is empty.
var ErrEmptyPolyline = errors.New("encoded polyline string is empty")

// DecodePolyline decodes a Google-format encoded polyline into an ordered
// point sequence. It is deterministic and fails on malformed input
// (truncated byte stream, invalid characters).
func DecodePolyline(encoded string) (Path, error) {
	return DecodePolylineScale(encoded, DefaultPolylineScale)
}

// DecodePolylineScale decodes an encoded polyline with a custom coordinate
// multiplier.
func DecodePolylineScale(encoded string, scale float64) (Path, error) {
	if encoded == "" {
		return nil, ErrEmptyPolyline
	}

	codec := polyline.Codec{Dim: 2, Scale: scale}
	coords, _, err := codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	path := make(Path, len(coords))
	for i, coord := range coords {
		path[i] = Point{Lat: coord[0], Lon: coord[1]}
		if !path[i].Valid() {
			return nil, fmt.Errorf("decode polyline: point %d: %w", i, ErrInvalidCoordinate)
		}
	}

	return path, nil
}

// DecodeSegments decodes an ordered list of encoded polylines representing
// contiguous sections of one route. Decoded segments are returned in input
// order with segment boundaries preserved, so an attributor can treat the
// result as a single multi-segment line. Empty strings are skipped; a
// malformed segment fails the whole decode.
func DecodeSegments(encoded []string, scale float64) ([]Path, error) {
	if scale <= 0 {
		scale = DefaultPolylineScale
	}

	var segments []Path
	for i, enc := range encoded {
		if enc == "" {
			continue
		}
		path, err := DecodePolylineScale(enc, scale)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		if len(path) < 2 {
			continue
		}
		segments = append(segments, path)
	}

	return segments, nil
}
