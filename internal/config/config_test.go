package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "truck", cfg.Routing.Profile)
	assert.Equal(t, 1.0, cfg.Attribution.MinStateMiles)
	assert.Equal(t, time.Second, cfg.Attribution.SampleInterval)
	assert.Equal(t, "data/us_states.geojson", cfg.Attribution.BoundaryPath)
	assert.False(t, cfg.Attribution.CorridorBias)
	assert.Equal(t, "gpt-4o", cfg.Extraction.Model)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IFTA_LOGGING_LEVEL", "debug")
	t.Setenv("IFTA_ROUTING_API_KEY", "secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "secret", cfg.Routing.APIKey)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
logging:
  level: warn
attribution:
  min_state_miles: 2.5
  corridor_bias: true
database:
  url: postgres://localhost/ifta
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 2.5, cfg.Attribution.MinStateMiles)
	assert.True(t, cfg.Attribution.CorridorBias)
	assert.Equal(t, "postgres://localhost/ifta", cfg.Database.URL)
	// Unset values keep their defaults.
	assert.Equal(t, "truck", cfg.Routing.Profile)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: warn\n"), 0644))

	t.Setenv("IFTA_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	// A missing path is tolerated so the default path works out of the box.
	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
}
