package cmd

import (
	"context"
	"fmt"

	"ifta-mileage/internal/cache"
	"ifta-mileage/internal/clients/graphhopper"
	"ifta-mileage/internal/clients/nominatim"
	"ifta-mileage/internal/lib/trip"
	"ifta-mileage/internal/services"
)

// buildAnalyzer wires the trip analysis pipeline from the loaded
// configuration. The returned cleanup closes the database handle when one
// was opened.
func buildAnalyzer(ctx context.Context) (*services.TripAnalyzer, func(), error) {
	cleanup := func() {}

	gh := graphhopper.NewClient(cfg.Routing.APIKey).WithProfile(cfg.Routing.Profile)
	nom := nominatim.NewClient().WithMinInterval(cfg.Geocoding.RequestInterval)

	var store services.PersistentCache
	if cfg.Database.URL != "" {
		db, err := cache.Open(cfg.Database.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open geocode cache database: %w", err)
		}
		cleanup = func() { _ = db.Close() }

		sqlCache := cache.NewSQLGeocodeCache(db)
		if err := sqlCache.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		store = sqlCache
	}

	var providers []services.Provider
	if cfg.Geocoding.APIKey != "" {
		providers = append(providers, services.GraphHopperProvider{Client: gh})
	}
	providers = append(providers, services.NominatimProvider{Client: nom})

	reverse := make([]services.ReverseProvider, 0, len(providers))
	for _, p := range providers {
		reverse = append(reverse, p.(services.ReverseProvider))
	}

	geocoder := services.NewGeocodingService(providers, reverse, cache.New(log), store, log)

	var router trip.Router
	if cfg.Routing.APIKey != "" {
		router = gh
	}
	legs := trip.NewLegCalculator(router, log)

	strategies := services.BuildStrategies(services.StrategyOptions{
		BoundaryPath:   cfg.Attribution.BoundaryPath,
		MinStateMiles:  cfg.Attribution.MinStateMiles,
		SampleInterval: cfg.Attribution.SampleInterval,
		CorridorBias:   cfg.Attribution.CorridorBias,
	}, geocoder, log)

	agg := trip.NewAggregator(legs, strategies, log)

	return services.NewTripAnalyzer(geocoder, agg, log), cleanup, nil
}
