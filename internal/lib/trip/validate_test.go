package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckMileage_Ladder(t *testing.T) {
	tests := []struct {
		name      string
		extracted float64
		computed  float64
		severity  string
	}{
		{"exact match", 1000, 1000, SeverityOK},
		{"under 5 percent", 1000, 1040, SeverityOK},
		{"notice at 5 percent", 1000, 1050, SeverityNotice},
		{"warning at 10 percent", 1000, 1100, SeverityWarning},
		{"critical at 20 percent", 1000, 1200, SeverityCritical},
		{"critical when computed is low", 1000, 750, SeverityCritical},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := CheckMileage(tc.extracted, tc.computed)
			assert.Equal(t, tc.severity, check.Severity)
			if tc.severity != SeverityOK {
				assert.NotEmpty(t, check.Message)
			}
		})
	}
}

func TestCheckMileage_NoExtractedTotal(t *testing.T) {
	check := CheckMileage(0, 1200)
	assert.Equal(t, SeverityOK, check.Severity)
	assert.Equal(t, 0.0, check.DiffPercent)

	check = CheckMileage(1200, 0)
	assert.Equal(t, SeverityOK, check.Severity)
}

func TestCheckMileage_DiffPercent(t *testing.T) {
	check := CheckMileage(1000, 1150)
	assert.InDelta(t, 15, check.DiffPercent, 1e-9)
	assert.Equal(t, SeverityWarning, check.Severity)
}
