package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ifta-mileage/internal/lib/states"
	"ifta-mileage/internal/lib/trip"
	"ifta-mileage/internal/report"
)

var (
	analyzeMiles  float64
	analyzeKML    string
	analyzeFormat string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [stops...]",
	Short: "Compute per-state mileage for a trip",
	Long: `Geocode the given stops in order, route each leg, and attribute the
driven miles to states.

Stops are "City, ST" strings. The first stop is the trip origin and the
rest are visited in order.

Examples:
  tripmiles analyze "Bloomington, CA" "Phoenix, AZ" "Dallas, TX"
  tripmiles analyze --miles 2450 "San Bernardino, CA" "Laredo, TX"
  tripmiles analyze --format json "Fontana, CA" "El Paso, TX"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Float64VarP(&analyzeMiles, "miles", "m", 0, "trip sheet total miles, for cross-checking")
	analyzeCmd.Flags().StringVarP(&analyzeKML, "kml", "k", "", "write route geometry to this KML file")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "table", "output format (table, json)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	analyzer, cleanup, err := buildAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	waypoints := make([]trip.Waypoint, len(args))
	for i, label := range args {
		role := trip.RoleDrop
		if i == 0 {
			role = trip.RoleOrigin
		} else if i == len(args)-1 {
			role = trip.RoleDropoff
		}
		waypoints[i] = trip.Waypoint{
			Label: label,
			Role:  role,
			State: states.FromLocation(label),
		}
	}

	result, err := analyzer.AnalyzeWaypoints(ctx, waypoints, analyzeMiles)
	if err != nil {
		return err
	}

	if analyzeKML != "" {
		f, err := os.Create(analyzeKML)
		if err != nil {
			return fmt.Errorf("create KML file: %w", err)
		}
		defer f.Close()
		if err := report.WriteKML(f, "Trip", result.Trip); err != nil {
			return fmt.Errorf("write KML: %w", err)
		}
	}

	switch analyzeFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return report.WriteTable(os.Stdout, result)
	}
}
