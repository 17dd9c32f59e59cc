package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyKeywordPrePass(t *testing.T) {
	// No API key configured; every case here must resolve via keywords.
	s := NewClassifierService(&config.Config{AITimeout: time.Second})

	cases := []struct {
		text string
		want string
	}{
		{"Broken street LAMP on the corner", "Lighting"},
		{"Huge pothole near the school", "Roads"},
		{"Garbage piling up for weeks", "Waste"},
		{"Water leak flooding the sidewalk", "Water"},
		{"Fresh graffiti on the library wall", "Vandalism"},
		{"Cars parking on the bike lane", "Parking"},
		{"The tram is always late", "Transport"},
		{"Extremely loud bar at night", "Noise"},
	}
	for _, tc := range cases {
		got, err := s.Classify(context.Background(), tc.text)
		require.NoError(t, err, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestClassifyUnavailableWithoutKey(t *testing.T) {
	s := NewClassifierService(&config.Config{AITimeout: time.Second})

	_, err := s.Classify(context.Background(), "something unclassifiable")
	assert.ErrorIs(t, err, ErrClassifierUnavailable)
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "Roads", normalizeCategory("Roads"))
	assert.Equal(t, "Roads", normalizeCategory("roads"))
	assert.Equal(t, "Roads", normalizeCategory(` "Roads." `))
	assert.Equal(t, "Other", normalizeCategory("Potholes"))
	assert.Equal(t, "Other", normalizeCategory(""))
	assert.Equal(t, "Other", normalizeCategory("I think this is about Roads"))
}

func TestClassifierRequestShape(t *testing.T) {
	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Hazards"}},
			},
		})
	}))
	defer server.Close()

	s := NewClassifierService(&config.Config{
		OpenAIAPIKey: "test-key",
		OpenAIModel:  "gpt-4o-mini",
		AITimeout:    time.Second,
	})
	s.endpoint = server.URL

	got, err := s.Classify(context.Background(), "something unclassifiable")
	require.NoError(t, err)
	assert.Equal(t, "Hazards", got)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.InDelta(t, 0.1, captured.Temperature, 1e-9)
	assert.Equal(t, 10, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "something unclassifiable")
}

func TestClassifierUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewClassifierService(&config.Config{
		OpenAIAPIKey: "test-key",
		AITimeout:    time.Second,
	})
	s.endpoint = server.URL

	_, err := s.Classify(context.Background(), "something unclassifiable")
	assert.ErrorIs(t, err, ErrClassificationFailed)
}
