package trip

import (
	"fmt"
	"math"
)

// MileageCheck compares a trip sheet's claimed total against the computed
// total. Severity escalates with the relative discrepancy.
type MileageCheck struct {
	ExtractedMiles float64 `json:"extracted_miles"`
	ComputedMiles  float64 `json:"computed_miles"`
	DiffPercent    float64 `json:"diff_percent"`
	Severity       string  `json:"severity"`
	Message        string  `json:"message,omitempty"`
}

// Discrepancy severities.
const (
	SeverityOK       = "ok"
	SeverityNotice   = "notice"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// CheckMileage grades the gap between the driver-reported and computed trip
// totals. Thresholds are 5, 10, and 20 percent; below 5 the trip passes.
// A zero extracted total means the sheet carried no usable figure and the
// check passes vacuously.
func CheckMileage(extractedMiles, computedMiles float64) MileageCheck {
	check := MileageCheck{
		ExtractedMiles: extractedMiles,
		ComputedMiles:  computedMiles,
		Severity:       SeverityOK,
	}
	if extractedMiles <= 0 || computedMiles <= 0 {
		return check
	}

	check.DiffPercent = math.Abs(extractedMiles-computedMiles) / extractedMiles * 100

	switch {
	case check.DiffPercent >= 20:
		check.Severity = SeverityCritical
	case check.DiffPercent >= 10:
		check.Severity = SeverityWarning
	case check.DiffPercent >= 5:
		check.Severity = SeverityNotice
	default:
		return check
	}

	check.Message = fmt.Sprintf(
		"reported total %.1f mi differs from computed %.1f mi by %.1f%%",
		extractedMiles, computedMiles, check.DiffPercent)
	return check
}
