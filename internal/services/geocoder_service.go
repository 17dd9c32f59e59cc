package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/urbanai-backend/internal/config"
)

var (
	ErrGeocoderUnavailable = errors.New("geocoding service not configured")
	ErrGeocodingFailed     = errors.New("geocoding failed")
	ErrOutsideRegion       = errors.New("address is outside the accepted region")
)

type geocodeResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	AddressComponents []struct {
		LongName string   `json:"long_name"`
		Types    []string `json:"types"`
	} `json:"address_components"`
}

type geocodeResponse struct {
	Status  string          `json:"status"`
	Results []geocodeResult `json:"results"`
}

// GeocoderService resolves street addresses to coordinates and enforces the
// accepted region: the first candidate whose locality matches the configured
// city and whose coordinates fall inside the configured bounding box wins;
// without such a candidate the submission is rejected.
type GeocoderService struct {
	cfg    *config.Config
	client *http.Client
}

func NewGeocoderService(cfg *config.Config) *GeocoderService {
	return &GeocoderService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Locate resolves an address inside the accepted region.
func (s *GeocoderService) Locate(ctx context.Context, address string) (lat, lng float64, err error) {
	if s.cfg.GeocodingAPIKey == "" {
		return 0, 0, ErrGeocoderUnavailable
	}

	query := url.Values{}
	query.Set("address", address)
	query.Set("key", s.cfg.GeocodingAPIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.GeocodingURL+"?"+query.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: status %d", ErrGeocodingFailed, httpResp.StatusCode)
	}

	var resp geocodeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrGeocodingFailed, err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return 0, 0, ErrOutsideRegion
	default:
		return 0, 0, fmt.Errorf("%w: status %s", ErrGeocodingFailed, resp.Status)
	}

	for _, result := range resp.Results {
		if s.accept(result) {
			return result.Geometry.Location.Lat, result.Geometry.Location.Lng, nil
		}
	}
	return 0, 0, ErrOutsideRegion
}

func (s *GeocoderService) accept(result geocodeResult) bool {
	lat := result.Geometry.Location.Lat
	lng := result.Geometry.Location.Lng
	if lat < s.cfg.MinLatitude || lat > s.cfg.MaxLatitude ||
		lng < s.cfg.MinLongitude || lng > s.cfg.MaxLongitude {
		return false
	}

	for _, component := range result.AddressComponents {
		for _, t := range component.Types {
			if t == "locality" && strings.EqualFold(component.LongName, s.cfg.City) {
				return true
			}
		}
	}
	return false
}
