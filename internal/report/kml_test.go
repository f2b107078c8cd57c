package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/trip"
)

func TestWriteKML_WithGeometry(t *testing.T) {
	result := sampleResult()
	result.Trip.Legs[0].Geometry = []geo.Path{{
		{Lat: 34.07, Lon: -117.40},
		{Lat: 33.80, Lon: -115.00},
		{Lat: 33.45, Lon: -112.07},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, "Test Trip", result.Trip))
	out := buf.String()

	assert.Contains(t, out, "<kml")
	assert.Contains(t, out, "<name>Test Trip</name>")
	assert.Contains(t, out, "<Placemark>")
	assert.Contains(t, out, "Leg 1: Bloomington, CA to Phoenix, AZ")
	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "-117.4,34.07")
	assert.Contains(t, out, "-112.07,33.45")
}

func TestWriteKML_FallsBackToEndpoints(t *testing.T) {
	result := sampleResult() // no geometry on the leg

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, "Trip", result.Trip))
	out := buf.String()

	assert.Contains(t, out, "<LineString>")
	assert.Contains(t, out, "-117.4,34.07")
}

func TestWriteKML_SkipsFailedLegs(t *testing.T) {
	tr := &trip.Trip{
		Legs: []trip.Leg{{
			Index:       0,
			Origin:      trip.Waypoint{Label: "A"},
			Destination: trip.Waypoint{Label: "B"},
			Failed:      true,
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, "Trip", tr))
	assert.NotContains(t, buf.String(), "<Placemark>")
}

func TestWriteKML_DescriptionCarriesAttribution(t *testing.T) {
	result := sampleResult()

	var buf bytes.Buffer
	require.NoError(t, WriteKML(&buf, "Trip", result.Trip))
	out := buf.String()

	assert.Contains(t, out, "AZ: 210.0 mi")
	assert.Contains(t, out, "CA: 130.0 mi")
}
