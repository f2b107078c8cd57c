// Package config loads the application configuration from defaults, an
// optional YAML file, and IFTA_-prefixed environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ifta-mileage/internal/logging"
)

// EnvPrefix namespaces this service's environment variables, e.g.
// IFTA_ROUTING_API_KEY maps to routing.api_key.
const EnvPrefix = "IFTA_"

// Config is the complete application configuration.
type Config struct {
	Logging     logging.Config    `koanf:"logging"`
	Routing     RoutingConfig     `koanf:"routing"`
	Geocoding   GeocodingConfig   `koanf:"geocoding"`
	Attribution AttributionConfig `koanf:"attribution"`
	Extraction  ExtractionConfig  `koanf:"extraction"`
	Database    DatabaseConfig    `koanf:"database"`
}

// RoutingConfig holds routing provider settings.
type RoutingConfig struct {
	APIKey  string `koanf:"api_key"`
	Profile string `koanf:"profile"`
}

// GeocodingConfig holds geocoding provider and cache settings.
type GeocodingConfig struct {
	APIKey          string        `koanf:"api_key"`
	NominatimAgent  string        `koanf:"nominatim_agent"`
	RequestInterval time.Duration `koanf:"request_interval"`
}

// AttributionConfig tunes state mileage attribution.
type AttributionConfig struct {
	BoundaryPath   string        `koanf:"boundary_path"`
	MinStateMiles  float64       `koanf:"min_state_miles"`
	SampleInterval time.Duration `koanf:"sample_interval"`
	CorridorBias   bool          `koanf:"corridor_bias"`
}

// ExtractionConfig holds trip sheet extraction settings.
type ExtractionConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"`
}

// DatabaseConfig holds the optional persistent cache settings. An empty URL
// disables the SQL layer.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"logging.level":                "info",
		"logging.format":               "console",
		"logging.output":               "stderr",
		"routing.profile":              "truck",
		"geocoding.request_interval":   "1s",
		"attribution.boundary_path":    "data/us_states.geojson",
		"attribution.min_state_miles":  1.0,
		"attribution.sample_interval":  "1s",
		"attribution.corridor_bias":    false,
		"extraction.model":             "gpt-4o",
	}
}

// Load reads the configuration. path may be empty or point to a YAML file;
// a missing explicit file is an error, a missing default file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// IFTA_ATTRIBUTION_MIN_STATE_MILES -> attribution.min_state_miles.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
