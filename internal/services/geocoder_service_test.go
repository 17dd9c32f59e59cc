package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geocoderConfig(url string) *config.Config {
	return &config.Config{
		GeocodingAPIKey: "test-key",
		GeocodingURL:    url,
		City:            "Timisoara",
		MinLatitude:     45.70,
		MaxLatitude:     45.81,
		MinLongitude:    21.12,
		MaxLongitude:    21.32,
	}
}

func geocodeServer(t *testing.T, status string, results []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.NotEmpty(t, r.URL.Query().Get("address"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  status,
			"results": results,
		})
	}))
}

func candidate(lat, lng float64, locality string) map[string]any {
	return map[string]any{
		"geometry": map[string]any{
			"location": map[string]any{"lat": lat, "lng": lng},
		},
		"address_components": []map[string]any{
			{"long_name": locality, "types": []string{"locality", "political"}},
		},
	}
}

func TestLocateAcceptsFirstValidCandidate(t *testing.T) {
	server := geocodeServer(t, "OK", []map[string]any{
		candidate(46.0, 22.0, "Timisoara"),  // outside bbox
		candidate(45.75, 21.22, "Arad"),     // wrong locality
		candidate(45.75, 21.22, "timisoara"), // case-insensitive match
		candidate(45.76, 21.23, "Timisoara"),
	})
	defer server.Close()

	s := NewGeocoderService(geocoderConfig(server.URL))
	lat, lng, err := s.Locate(context.Background(), "Main St 5")
	require.NoError(t, err)
	assert.Equal(t, 45.75, lat)
	assert.Equal(t, 21.22, lng)
}

func TestLocateRejectsOutsideRegion(t *testing.T) {
	server := geocodeServer(t, "OK", []map[string]any{
		candidate(44.43, 26.10, "Bucharest"),
	})
	defer server.Close()

	s := NewGeocoderService(geocoderConfig(server.URL))
	_, _, err := s.Locate(context.Background(), "Some St 1")
	assert.ErrorIs(t, err, ErrOutsideRegion)
}

func TestLocateZeroResults(t *testing.T) {
	server := geocodeServer(t, "ZERO_RESULTS", nil)
	defer server.Close()

	s := NewGeocoderService(geocoderConfig(server.URL))
	_, _, err := s.Locate(context.Background(), "gibberish")
	assert.ErrorIs(t, err, ErrOutsideRegion)
}

func TestLocateUpstreamFailure(t *testing.T) {
	server := geocodeServer(t, "OVER_QUERY_LIMIT", nil)
	defer server.Close()

	s := NewGeocoderService(geocoderConfig(server.URL))
	_, _, err := s.Locate(context.Background(), "Main St 5")
	assert.ErrorIs(t, err, ErrGeocodingFailed)
}

func TestLocateUnavailableWithoutKey(t *testing.T) {
	s := NewGeocoderService(&config.Config{})
	_, _, err := s.Locate(context.Background(), "Main St 5")
	assert.ErrorIs(t, err, ErrGeocoderUnavailable)
}
