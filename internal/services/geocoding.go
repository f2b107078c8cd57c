// Package services holds the application-level orchestration: geocoding with
// caching and provider fallback, and trip analysis wiring.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ifta-mileage/internal/cache"
	"ifta-mileage/internal/clients/graphhopper"
	"ifta-mileage/internal/clients/nominatim"
	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/states"
	"ifta-mileage/internal/lib/trip"
)

// ErrNotFound is returned when every provider answered but none could place
// the location. Distinct from transport errors, which are retryable.
var ErrNotFound = errors.New("location not found")

// Cache TTLs. Positive results are stable; negative results get a shorter
// window in case a provider's index catches up.
const (
	positiveTTL = 30 * 24 * time.Hour
	negativeTTL = 24 * time.Hour
)

// Hit is one successful geocoding result.
type Hit struct {
	Point geo.Point
	State string
}

// Provider is a forward geocoder. A (nil, nil) result means the provider
// answered and found nothing.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, location string) (*Hit, error)
}

// ReverseProvider resolves a coordinate to a state name.
type ReverseProvider interface {
	Name() string
	StateOf(ctx context.Context, p geo.Point) (string, error)
}

// GraphHopperProvider adapts the GraphHopper client to the provider
// interfaces.
type GraphHopperProvider struct {
	Client *graphhopper.Client
}

func (p GraphHopperProvider) Name() string { return "graphhopper" }

func (p GraphHopperProvider) Geocode(ctx context.Context, location string) (*Hit, error) {
	result, err := p.Client.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return &Hit{Point: result.Point, State: result.State}, nil
}

func (p GraphHopperProvider) StateOf(ctx context.Context, pt geo.Point) (string, error) {
	return p.Client.StateOf(ctx, pt)
}

// NominatimProvider adapts the Nominatim client to the provider interfaces.
type NominatimProvider struct {
	Client *nominatim.Client
}

func (p NominatimProvider) Name() string { return "nominatim" }

func (p NominatimProvider) Geocode(ctx context.Context, location string) (*Hit, error) {
	result, err := p.Client.Geocode(ctx, location)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	return &Hit{Point: result.Point, State: result.State}, nil
}

func (p NominatimProvider) StateOf(ctx context.Context, pt geo.Point) (string, error) {
	return p.Client.StateOf(ctx, pt)
}

// PersistentCache is the optional durable layer under the in-memory cache.
// Satisfied by the SQL geocode cache.
type PersistentCache interface {
	Get(ctx context.Context, location string) (*cache.GeocodeRecord, bool, error)
	Put(ctx context.Context, rec cache.GeocodeRecord) error
}

// GeocodingService resolves location strings to coordinates through a
// provider chain, with an in-memory TTL cache in front of an optional
// persistent one. Negative results are cached too, so a location a provider
// cannot place does not burn a remote call per trip.
type GeocodingService struct {
	providers []Provider
	reverse   []ReverseProvider
	memory    *cache.Cache
	store     PersistentCache
	log       *zap.Logger
}

// NewGeocodingService builds the service. Providers are tried in order;
// store may be nil for memory-only operation.
func NewGeocodingService(providers []Provider, reverse []ReverseProvider, memory *cache.Cache, store PersistentCache, log *zap.Logger) *GeocodingService {
	if log == nil {
		log = zap.NewNop()
	}
	if memory == nil {
		memory = cache.New(log)
	}
	return &GeocodingService{
		providers: providers,
		reverse:   reverse,
		memory:    memory,
		store:     store,
		log:       log,
	}
}

// Resolve geocodes a location string. Returns ErrNotFound when no provider
// can place it; any other error means all providers failed to answer.
func (s *GeocodingService) Resolve(ctx context.Context, location string) (*Hit, error) {
	if location == "" {
		return nil, fmt.Errorf("empty location string")
	}

	key := "geocode:" + location

	var rec cache.GeocodeRecord
	if found, err := s.memory.Get(key, &rec); err == nil && found {
		return recordToHit(rec)
	}

	if s.store != nil {
		stored, found, err := s.store.Get(ctx, location)
		if err != nil {
			s.log.Warn("persistent geocode cache read failed",
				zap.String("location", location), zap.Error(err))
		} else if found {
			ttl := positiveTTL
			if stored.NotFound {
				ttl = negativeTTL
			}
			if err := s.memory.Set(key, stored, ttl, stored.Source); err != nil {
				s.log.Warn("memory cache write failed", zap.Error(err))
			}
			return recordToHit(*stored)
		}
	}

	var lastErr error
	for _, p := range s.providers {
		hit, err := p.Geocode(ctx, location)
		if err != nil {
			s.log.Warn("geocoding provider failed",
				zap.String("provider", p.Name()),
				zap.String("location", location),
				zap.Error(err))
			lastErr = err
			continue
		}

		newRec := cache.GeocodeRecord{
			Location: location,
			Source:   p.Name(),
			Created:  time.Now(),
		}
		if hit == nil {
			newRec.NotFound = true
			s.save(ctx, key, newRec, negativeTTL)
			// This provider answered definitively; trying the next one
			// keeps a chance of a hit from a richer index.
			continue
		}

		newRec.Lat = hit.Point.Lat
		newRec.Lon = hit.Point.Lon
		newRec.State = hit.State
		s.save(ctx, key, newRec, positiveTTL)
		return hit, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("geocode %q: %w", location, lastErr)
	}
	return nil, fmt.Errorf("geocode %q: %w", location, ErrNotFound)
}

func (s *GeocodingService) save(ctx context.Context, key string, rec cache.GeocodeRecord, ttl time.Duration) {
	if err := s.memory.Set(key, rec, ttl, rec.Source); err != nil {
		s.log.Warn("memory cache write failed", zap.Error(err))
	}
	if s.store != nil {
		if err := s.store.Put(ctx, rec); err != nil {
			s.log.Warn("persistent geocode cache write failed",
				zap.String("location", rec.Location), zap.Error(err))
		}
	}
}

func recordToHit(rec cache.GeocodeRecord) (*Hit, error) {
	if rec.NotFound {
		return nil, fmt.Errorf("geocode %q: %w", rec.Location, ErrNotFound)
	}
	return &Hit{
		Point: geo.Point{Lat: rec.Lat, Lon: rec.Lon},
		State: rec.State,
	}, nil
}

// StateOf resolves a coordinate to a state code through the reverse provider
// chain, with memory caching keyed on a rounded coordinate.
func (s *GeocodingService) StateOf(ctx context.Context, p geo.Point) (string, error) {
	key := fmt.Sprintf("reverse:%.3f,%.3f", p.Lat, p.Lon)

	var cached string
	if found, err := s.memory.Get(key, &cached); err == nil && found {
		return cached, nil
	}

	var lastErr error
	for _, r := range s.reverse {
		raw, err := r.StateOf(ctx, p)
		if err != nil {
			s.log.Debug("reverse provider failed",
				zap.String("provider", r.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if err := s.memory.Set(key, raw, positiveTTL, r.Name()); err != nil {
			s.log.Warn("memory cache write failed", zap.Error(err))
		}
		return raw, nil
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", ErrNotFound
}

// ResolveWaypoints geocodes every waypoint label and attaches coordinates.
// A waypoint that cannot be resolved keeps a nil Coord; it is reported, not
// invented. Waypoints already carrying a state hint keep it unless the
// geocoder returns a recognizable state.
func (s *GeocodingService) ResolveWaypoints(ctx context.Context, wps []trip.Waypoint) []trip.Waypoint {
	out := make([]trip.Waypoint, len(wps))
	for i, wp := range wps {
		out[i] = wp

		hit, err := s.Resolve(ctx, wp.Label)
		if err != nil {
			s.log.Warn("waypoint geocoding failed",
				zap.String("label", wp.Label),
				zap.String("role", string(wp.Role)),
				zap.Error(err))
			continue
		}

		pt := hit.Point
		out[i].Coord = &pt
		if code, ok := states.Normalize(hit.State); ok {
			out[i].State = code
		}
	}
	return out
}
