package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"California", "CA", true},
		{"california", "CA", true},
		{"CA", "CA", true},
		{"ca", "CA", true},
		{"New Mexico", "NM", true},
		{" Texas ", "TX", true},
		{"Alaska", "AK", true},
		{"", "", false},
		{"Ontario", "", false},
		{"ZZ", "", false},
	}

	for _, tc := range tests {
		got, ok := Normalize(tc.in)
		assert.Equal(t, tc.ok, ok, "Normalize(%q)", tc.in)
		assert.Equal(t, tc.want, got, "Normalize(%q)", tc.in)
	}
}

func TestIsContiguous(t *testing.T) {
	assert.True(t, IsContiguous("CA"))
	assert.True(t, IsContiguous("ME"))
	assert.False(t, IsContiguous("AK"))
	assert.False(t, IsContiguous("HI"))
	assert.False(t, IsContiguous("DC"))
	assert.False(t, IsContiguous("PR"))
	assert.False(t, IsContiguous(Unknown))
}

func TestFromLocation(t *testing.T) {
	assert.Equal(t, "CA", FromLocation("Bloomington, CA"))
	assert.Equal(t, "TX", FromLocation("Dallas, TX 75201"))
	assert.Equal(t, "NM", FromLocation("Albuquerque, New Mexico"))
	assert.Equal(t, "", FromLocation("Somewhere"))
	assert.Equal(t, "", FromLocation("City, "))
	assert.Equal(t, "", FromLocation(""))
}
