package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifta-mileage/internal/lib/attribution"
	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/trip"
	"ifta-mileage/internal/services"
)

func TestRoundMiles(t *testing.T) {
	assert.Equal(t, 150.0, RoundMiles(150.04999999))
	assert.Equal(t, 150.1, RoundMiles(150.05))
	assert.Equal(t, 0.0, RoundMiles(0))
	assert.Equal(t, 1204.5, RoundMiles(1204.4501))
}

func sampleResult() *services.AnalysisResult {
	origin := trip.Waypoint{Label: "Bloomington, CA", Role: trip.RoleOrigin, Coord: &geo.Point{Lat: 34.07, Lon: -117.40}}
	dest := trip.Waypoint{Label: "Phoenix, AZ", Role: trip.RoleDropoff, Coord: &geo.Point{Lat: 33.45, Lon: -112.07}}

	return &services.AnalysisResult{
		Trip: &trip.Trip{
			Legs: []trip.Leg{{
				Index:             0,
				Origin:            origin,
				Destination:       dest,
				DistanceMiles:     340,
				Method:            trip.MethodAuthoritative,
				AttributionMethod: attribution.MethodGeometric,
				Attribution: []attribution.StateShare{
					{StateCode: "AZ", Miles: 210},
					{StateCode: "CA", Miles: 130},
				},
			}},
			TotalDistanceMiles: 340,
			StateMileage: []trip.StateMileage{
				{StateCode: "AZ", Miles: 210, Percentage: 61.76},
				{StateCode: "CA", Miles: 130, Percentage: 38.24},
			},
			SuccessfulLegs: 1,
		},
		Check: trip.CheckMileage(350, 340),
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleResult()))
	out := buf.String()

	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "AZ")
	assert.Contains(t, out, "210.0")
	assert.Contains(t, out, "CA")
	assert.Contains(t, out, "130.0")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "340.0")
	assert.Contains(t, out, "Legs: 1 successful of 1")
	assert.Contains(t, out, "geometric")
}

func TestWriteTable_DiscrepancyWarning(t *testing.T) {
	result := sampleResult()
	result.Check = trip.CheckMileage(500, 340)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, result))

	assert.Contains(t, buf.String(), strings.ToUpper(trip.SeverityCritical))
}

func TestWriteTable_FailedLeg(t *testing.T) {
	result := sampleResult()
	result.Trip.Legs = append(result.Trip.Legs, trip.Leg{
		Index:       1,
		Origin:      trip.Waypoint{Label: "A"},
		Destination: trip.Waypoint{Label: "B"},
		Failed:      true,
		Error:       "no usable coordinates",
	})

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, result))
	assert.Contains(t, buf.String(), "failed: no usable coordinates")
}
