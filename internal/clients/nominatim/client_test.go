package nominatim

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ifta-mileage/internal/lib/geo"
)

// MockHTTPDoer is a mock implementation of HTTPDoer
type MockHTTPDoer struct {
	mock.Mock
}

func (m *MockHTTPDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const searchFixture = `[
	{
		"lat": "32.7766642",
		"lon": "-96.7969879",
		"display_name": "Dallas, Dallas County, Texas, United States",
		"address": {"state": "Texas"}
	}
]`

const reverseFixture = `{
	"lat": "32.7766642",
	"lon": "-96.7969879",
	"display_name": "Dallas, Dallas County, Texas, United States",
	"address": {"state": "Texas"}
}`

func newTestClient(doer HTTPDoer) *Client {
	return NewClientWithHTTPDoer("https://nominatim.example", doer).WithMinInterval(0)
}

func TestGeocode_Success(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		q := req.URL.Query()
		return req.URL.Path == "/search" &&
			q.Get("countrycodes") == "us" &&
			q.Get("format") == "jsonv2" &&
			req.Header.Get("User-Agent") == DefaultUserAgent
	})).Return(createMockResponse(200, searchFixture), nil)

	client := newTestClient(mockHTTP)

	result, err := client.Geocode(context.Background(), "Dallas, TX")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.InDelta(t, 32.7766642, result.Point.Lat, 1e-9)
	assert.InDelta(t, -96.7969879, result.Point.Lon, 1e-9)
	assert.Equal(t, "Texas", result.State)
	mockHTTP.AssertExpectations(t)
}

func TestGeocode_NoResults(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, `[]`), nil)

	client := newTestClient(mockHTTP)

	result, err := client.Geocode(context.Background(), "Nowhereville, ZZ")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestReverseGeocode_Success(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.Path == "/reverse"
	})).Return(createMockResponse(200, reverseFixture), nil)

	client := newTestClient(mockHTTP)

	result, err := client.ReverseGeocode(context.Background(), geo.Point{Lat: 32.78, Lon: -96.8})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Texas", result.State)
}

func TestStateOf(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(200, reverseFixture), nil)

	client := newTestClient(mockHTTP)

	state, err := client.StateOf(context.Background(), geo.Point{Lat: 32.78, Lon: -96.8})
	require.NoError(t, err)
	assert.Equal(t, "Texas", state)
}

func TestStateOf_InvalidCoordinate(t *testing.T) {
	client := newTestClient(&MockHTTPDoer{})

	_, err := client.StateOf(context.Background(), geo.Point{Lat: 95, Lon: 0})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestGeocode_RateLimited(t *testing.T) {
	mockHTTP := &MockHTTPDoer{}
	mockHTTP.On("Do", mock.AnythingOfType("*http.Request")).Return(
		createMockResponse(429, "slow down"), nil)

	client := newTestClient(mockHTTP)

	_, err := client.Geocode(context.Background(), "Dallas, TX")
	assert.ErrorContains(t, err, "rate limit")
}
