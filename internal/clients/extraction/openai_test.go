package extraction

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifta-mileage/internal/lib/trip"
)

func TestTripSheet_ToWaypoints(t *testing.T) {
	sheet := &TripSheet{
		TripStartedFrom: "Bloomington, CA",
		FirstDrop:       "Phoenix, AZ",
		SecondDrop:      "",
		ThirdDrop:       "El Paso, TX",
		InboundPU:       "Laredo, TX",
		DropOff:         []string{"Ontario, CA", "San Bernardino, CA"},
	}

	wps := sheet.ToWaypoints()
	require.Len(t, wps, 6)

	assert.Equal(t, trip.RoleOrigin, wps[0].Role)
	assert.Equal(t, "Bloomington, CA", wps[0].Label)
	assert.Equal(t, "CA", wps[0].State)

	assert.Equal(t, trip.RoleDrop, wps[1].Role)
	assert.Equal(t, trip.RoleDrop, wps[2].Role)
	assert.Equal(t, "El Paso, TX", wps[2].Label)

	assert.Equal(t, trip.RolePickup, wps[3].Role)
	assert.Equal(t, "Laredo, TX", wps[3].Label)

	assert.Equal(t, trip.RoleDropoff, wps[4].Role)
	assert.Equal(t, trip.RoleDropoff, wps[5].Role)
	assert.Equal(t, "San Bernardino, CA", wps[5].Label)

	// No coordinates until geocoding runs.
	for _, wp := range wps {
		assert.Nil(t, wp.Coord)
	}
}

func TestTripSheet_ToWaypoints_EmptySheet(t *testing.T) {
	assert.Empty(t, (&TripSheet{}).ToWaypoints())
}

func TestTripSheet_TotalMilesValue(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2450", 2450},
		{"2,450", 2450},
		{" 1204.5 ", 1204.5},
		{"", 0},
		{"unreadable", 0},
		{"-50", 0},
	}

	for _, tc := range tests {
		sheet := &TripSheet{TotalMiles: tc.in}
		assert.Equal(t, tc.want, sheet.TotalMilesValue(), "TotalMiles=%q", tc.in)
	}
}

func TestTripSheet_Unmarshal(t *testing.T) {
	raw := `{
		"drivers_name": "JOHN SMITH",
		"unit": "112",
		"trailer": "245",
		"date_trip_started": "11/29/22",
		"date_trip_ended": "12/04/22",
		"trip": "",
		"trip_started_from": "Bloomington, CA",
		"first_drop": "Phoenix, AZ",
		"second_drop": "",
		"third_drop": "",
		"forth_drop": "",
		"inbound_pu": "Laredo, TX",
		"drop_off": ["San Bernardino, CA"],
		"total_miles": "2450",
		"fuel_purchases": [
			{"state": "AZ", "gallons": "102.5"},
			{"state": "TX", "gallons": "88.0"}
		]
	}`

	var sheet TripSheet
	require.NoError(t, json.Unmarshal([]byte(raw), &sheet))

	assert.Equal(t, "JOHN SMITH", sheet.DriversName)
	assert.Equal(t, "245", sheet.Trailer)
	assert.Equal(t, 2450.0, sheet.TotalMilesValue())
	require.Len(t, sheet.FuelPurchases, 2)
	assert.Equal(t, "AZ", sheet.FuelPurchases[0].State)
}

func TestExtractSheet_NoAPIKey(t *testing.T) {
	e := NewExtractor("", "")
	_, err := e.ExtractSheet(context.Background(), "https://example.com/scan.jpg")
	assert.ErrorContains(t, err, "API key")
}

func TestTripSheetSchema_IsValidJSON(t *testing.T) {
	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(TripSheetSchema.Schema.(json.RawMessage), &schema))
	assert.Equal(t, "object", schema["type"])
}
