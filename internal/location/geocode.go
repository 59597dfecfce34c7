package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Geocoder proxies reverse-geocoding lookups to a nominatim-style service.
type Geocoder struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGeocoder(baseURL string, timeout time.Duration, logger *slog.Logger) *Geocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Geocoder{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// ReverseGeocode resolves coordinates to a human-readable address. Any
// failure yields AddressUnknown; callers proceed either way.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	if g.baseURL == "" {
		return AddressUnknown
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))
	endpoint := fmt.Sprintf("%s/reverse?%s", g.baseURL, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return AddressUnknown
	}
	req.Header.Set("User-Agent", "attendance-tracking")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("reverse geocode failed", "error", err, "lat", lat, "lng", lng)
		return AddressUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		g.logger.Warn("reverse geocode returned error", "status", resp.StatusCode)
		return AddressUnknown
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil || decoded.DisplayName == "" {
		return AddressUnknown
	}
	return decoded.DisplayName
}
