package graphhopper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"ifta-mileage/internal/lib/geo"
)

// GeocodeResult is one hit from the GraphHopper geocoding API.
type GeocodeResult struct {
	Point       geo.Point
	Name        string
	State       string
	CountryCode string
}

// Geocode resolves a freeform location string to coordinates. Results are
// limited to the US. Returns (nil, nil) when the provider finds nothing.
func (c *Client) Geocode(ctx context.Context, location string) (*GeocodeResult, error) {
	if location == "" {
		return nil, fmt.Errorf("empty location string")
	}

	params := url.Values{}
	params.Set("q", location)
	params.Set("limit", "1")
	params.Set("locale", "en")
	params.Set("key", c.apiKey)

	return c.geocodeRequest(ctx, params)
}

// ReverseGeocode resolves a coordinate to the containing place, including
// its state.
func (c *Client) ReverseGeocode(ctx context.Context, p geo.Point) (*GeocodeResult, error) {
	if !p.Valid() {
		return nil, geo.ErrInvalidCoordinate
	}

	params := url.Values{}
	params.Set("reverse", "true")
	params.Set("point", fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon))
	params.Set("limit", "1")
	params.Set("key", c.apiKey)

	return c.geocodeRequest(ctx, params)
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

func (c *Client) geocodeRequest(ctx context.Context, params url.Values) (*GeocodeResult, error) {
	requestURL := fmt.Sprintf("%s/geocode?%s", c.baseURL, params.Encode())

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

	var response geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(response.Hits) == 0 {
		return nil, nil
	}

	hit := response.Hits[0]
	return &GeocodeResult{
		Point:       geo.Point{Lat: hit.Point.Lat, Lon: hit.Point.Lng},
		Name:        hit.Name,
		State:       hit.State,
		CountryCode: hit.CountryCode,
	}, nil
}

type geocodeResponse struct {
	Hits []geocodeHit `json:"hits"`
}

type geocodeHit struct {
	Point struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"point"`
	Name        string `json:"name"`
	State       string `json:"state"`
	CountryCode string `json:"countrycode"`
}
