package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ifta-mileage/internal/clients/extraction"
	"ifta-mileage/internal/lib/attribution"
	"ifta-mileage/internal/lib/boundaries"
	"ifta-mileage/internal/lib/trip"
)

// AnalysisResult bundles a processed trip with its mileage cross-check.
type AnalysisResult struct {
	Trip  *trip.Trip        `json:"trip"`
	Check trip.MileageCheck `json:"check"`
}

// TripAnalyzer runs the full pipeline for one trip: waypoint geocoding, leg
// computation, state attribution, and the extracted-vs-computed check.
type TripAnalyzer struct {
	geocoder *GeocodingService
	agg      *trip.Aggregator
	log      *zap.Logger
}

// NewTripAnalyzer builds the analyzer from its collaborators.
func NewTripAnalyzer(geocoder *GeocodingService, agg *trip.Aggregator, log *zap.Logger) *TripAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &TripAnalyzer{geocoder: geocoder, agg: agg, log: log}
}

// AnalyzeWaypoints geocodes and analyzes an ordered waypoint list.
// extractedMiles is the sheet's claimed total, zero when unknown.
func (a *TripAnalyzer) AnalyzeWaypoints(ctx context.Context, wps []trip.Waypoint, extractedMiles float64) (*AnalysisResult, error) {
	resolved := a.geocoder.ResolveWaypoints(ctx, wps)

	result, err := a.agg.Analyze(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("trip analysis: %w", err)
	}

	check := trip.CheckMileage(extractedMiles, result.TotalDistanceMiles)
	if check.Severity != trip.SeverityOK {
		a.log.Warn("mileage discrepancy",
			zap.String("severity", check.Severity),
			zap.Float64("extracted_miles", check.ExtractedMiles),
			zap.Float64("computed_miles", check.ComputedMiles),
			zap.Float64("diff_percent", check.DiffPercent))
	}

	return &AnalysisResult{Trip: result, Check: check}, nil
}

// AnalyzeSheet analyzes an extracted trip sheet.
func (a *TripAnalyzer) AnalyzeSheet(ctx context.Context, sheet *extraction.TripSheet) (*AnalysisResult, error) {
	return a.AnalyzeWaypoints(ctx, sheet.ToWaypoints(), sheet.TotalMilesValue())
}

// StrategyOptions tunes the attribution chain.
type StrategyOptions struct {
	BoundaryPath   string
	MinStateMiles  float64
	SampleInterval time.Duration
	CorridorBias   bool
}

// BuildStrategies assembles the ordered attribution chain: geometric when
// the boundary dataset loads, then sampling, then the endpoint split. A
// missing dataset removes the geometric tier for the process lifetime
// rather than failing every leg.
func BuildStrategies(opts StrategyOptions, resolver attribution.ReverseGeocoder, log *zap.Logger) []attribution.Strategy {
	if log == nil {
		log = zap.NewNop()
	}
	minMiles := opts.MinStateMiles
	if minMiles <= 0 {
		minMiles = attribution.DefaultMinMiles
	}

	var chain []attribution.Strategy

	if opts.BoundaryPath != "" {
		index, err := boundaries.Shared(opts.BoundaryPath)
		if err != nil {
			log.Warn("state boundary dataset unavailable, geometric attribution disabled",
				zap.String("path", opts.BoundaryPath), zap.Error(err))
		} else {
			chain = append(chain, attribution.NewGeometric(index, log).WithMinMiles(minMiles))
		}
	}

	if resolver != nil {
		chain = append(chain,
			attribution.NewSampler(resolver, opts.SampleInterval, log).
				WithCorridorBias(opts.CorridorBias).
				WithMinMiles(minMiles))
	}

	chain = append(chain, attribution.NewEndpointSplit(resolver, log))
	return chain
}
