// Package nominatim wraps the OpenStreetMap Nominatim API, used as the
// fallback geocoding provider.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"ifta-mileage/internal/lib/geo"
)

// DefaultUserAgent identifies this service to the Nominatim operators, who
// reject anonymous clients.
const DefaultUserAgent = "ifta-mileage/1.0"

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the Nominatim search and reverse APIs. The
// public instance enforces one request per second; the client serializes
// requests and spaces them out accordingly.
type Client struct {
	httpClient  HTTPDoer
	baseURL     string
	userAgent   string
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a client for the public Nominatim instance.
func NewClient() *Client {
	return NewClientWithHTTPDoer("https://nominatim.openstreetmap.org", &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewClientWithHTTPDoer creates a client with a custom HTTP implementation,
// used in tests.
func NewClientWithHTTPDoer(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		httpClient:  doer,
		baseURL:     baseURL,
		userAgent:   DefaultUserAgent,
		minInterval: time.Second,
	}
}

// WithMinInterval overrides the pause between requests. Zero disables the
// pacing, for tests.
func (c *Client) WithMinInterval(d time.Duration) *Client {
	c.minInterval = d
	return c
}

// Result is one place returned by Nominatim.
type Result struct {
	Point       geo.Point
	DisplayName string
	State       string
}

// Geocode resolves a freeform location string to coordinates, restricted to
// the US. Returns (nil, nil) when nothing matches.
func (c *Client) Geocode(ctx context.Context, location string) (*Result, error) {
	if location == "" {
		return nil, fmt.Errorf("empty location string")
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "jsonv2")
	params.Set("countrycodes", "us")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "/search", params)
	if err != nil {
		return nil, err
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}
	return places[0].toResult()
}

// ReverseGeocode resolves a coordinate to the containing place.
func (c *Client) ReverseGeocode(ctx context.Context, p geo.Point) (*Result, error) {
	if !p.Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", p.Lat))
	params.Set("lon", fmt.Sprintf("%.6f", p.Lon))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")

	body, err := c.get(ctx, "/reverse", params)
	if err != nil {
		return nil, err
	}

	var pl place
	if err := json.Unmarshal(body, &pl); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if pl.Lat == "" {
		return nil, nil
	}
	return pl.toResult()
}

// StateOf resolves a coordinate to its state name, for use as a sampling
// resolver.
func (c *Client) StateOf(ctx context.Context, p geo.Point) (string, error) {
	result, err := c.ReverseGeocode(ctx, p)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", fmt.Errorf("no place found at %.4f,%.4f", p.Lat, p.Lon)
	}
	return result.State, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// pace enforces the minimum interval between requests across goroutines.
func (c *Client) pace(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastCall)
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		State string `json:"state"`
	} `json:"address"`
}

func (p place) toResult() (*Result, error) {
	var lat, lon float64
	if _, err := fmt.Sscanf(p.Lat, "%f", &lat); err != nil {
		return nil, fmt.Errorf("failed to parse latitude %q: %w", p.Lat, err)
	}
	if _, err := fmt.Sscanf(p.Lon, "%f", &lon); err != nil {
		return nil, fmt.Errorf("failed to parse longitude %q: %w", p.Lon, err)
	}
	return &Result{
		Point:       geo.Point{Lat: lat, Lon: lon},
		DisplayName: p.DisplayName,
		State:       p.Address.State,
	}, nil
}
