package report

import (
	"fmt"
	"image/color"
	"io"

	kml "github.com/twpayne/go-kml/v2"

	"ifta-mileage/internal/lib/trip"
)

// WriteKML exports the trip's route geometry as a KML document, one
// placemark per leg, for eyeballing attributed routes in Google Earth. Legs
// without geometry get a straight line between their endpoints.
func WriteKML(w io.Writer, name string, t *trip.Trip) error {
	doc := kml.Document(
		kml.Name(name),
		kml.SharedStyle("route",
			kml.LineStyle(
				kml.Color(color.RGBA{R: 0x00, G: 0x7f, B: 0xff, A: 0xff}),
				kml.Width(4),
			),
		),
	)

	for _, leg := range t.Legs {
		if leg.Failed {
			continue
		}

		coords := legCoordinates(leg)
		if len(coords) < 2 {
			continue
		}

		doc.Add(kml.Placemark(
			kml.Name(fmt.Sprintf("Leg %d: %s to %s", leg.Index+1, leg.Origin.Label, leg.Destination.Label)),
			kml.Description(legDescription(leg)),
			kml.StyleURL("#route"),
			kml.LineString(
				kml.Tessellate(true),
				kml.Coordinates(coords...),
			),
		))
	}

	return kml.KML(doc).WriteIndent(w, "", "  ")
}

func legCoordinates(leg trip.Leg) []kml.Coordinate {
	var coords []kml.Coordinate
	if len(leg.Geometry) > 0 {
		for _, seg := range leg.Geometry {
			for _, p := range seg {
				coords = append(coords, kml.Coordinate{Lon: p.Lon, Lat: p.Lat})
			}
		}
		return coords
	}

	if leg.Origin.Coord != nil && leg.Destination.Coord != nil {
		coords = append(coords,
			kml.Coordinate{Lon: leg.Origin.Coord.Lon, Lat: leg.Origin.Coord.Lat},
			kml.Coordinate{Lon: leg.Destination.Coord.Lon, Lat: leg.Destination.Coord.Lat})
	}
	return coords
}

func legDescription(leg trip.Leg) string {
	desc := fmt.Sprintf("%.1f mi (%s)", RoundMiles(leg.DistanceMiles), leg.Method)
	for _, share := range leg.Attribution {
		desc += fmt.Sprintf("\n%s: %.1f mi", share.StateCode, RoundMiles(share.Miles))
	}
	return desc
}
