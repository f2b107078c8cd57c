// Package graphhopper wraps the GraphHopper routing and geocoding APIs.
package graphhopper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ifta-mileage/internal/lib/geo"
	"ifta-mileage/internal/lib/trip"
)

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the GraphHopper Directions API.
type Client struct {
	apiKey     string
	httpClient HTTPDoer
	baseURL    string
	profile    string
}

// NewClient creates a GraphHopper client with the truck routing profile.
func NewClient(apiKey string) *Client {
	return NewClientWithHTTPDoer(apiKey, "https://graphhopper.com/api/1", &http.Client{
		Timeout: 30 * time.Second,
	})
}

// NewClientWithHTTPDoer creates a client with a custom HTTP implementation,
// used in tests.
func NewClientWithHTTPDoer(apiKey, baseURL string, doer HTTPDoer) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: doer,
		baseURL:    baseURL,
		profile:    "truck",
	}
}

// WithProfile overrides the routing profile ("truck", "car", "small_truck").
func (c *Client) WithProfile(profile string) *Client {
	if profile != "" {
		c.profile = profile
	}
	return c
}

// Route computes a driving route between two coordinates. The returned
// polyline is encoded at the standard 1e-5 precision.
func (c *Client) Route(ctx context.Context, origin, dest geo.Point) (*trip.Route, error) {
	if !origin.Valid() || !dest.Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	params := url.Values{}
	params.Add("point", fmt.Sprintf("%.6f,%.6f", origin.Lat, origin.Lon))
	params.Add("point", fmt.Sprintf("%.6f,%.6f", dest.Lat, dest.Lon))
	params.Set("profile", c.profile)
	params.Set("points_encoded", "true")
	params.Set("instructions", "false")
	params.Set("calc_points", "true")
	params.Set("key", c.apiKey)

	requestURL := fmt.Sprintf("%s/route?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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

	var response routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Paths) == 0 {
		return nil, fmt.Errorf("no routes found in response")
	}

	path := response.Paths[0]
	route := &trip.Route{
		DistanceMeters: path.Distance,
		PolylineScale:  geo.DefaultPolylineScale,
	}
	if path.Points != "" {
		route.EncodedPolylines = []string{path.Points}
	}
	return route, nil
}

type routeResponse struct {
	Paths []routePath `json:"paths"`
}

type routePath struct {
	Distance float64 `json:"distance"`
	TimeMS   int64   `json:"time"`
	Points   string  `json:"points"`
}
