package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// RemoteLocation is the external tracking service's view of a user's
// current position.
type RemoteLocation struct {
	Username  string  `json:"username"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Client proxies coordinate updates and queries to the external tracking
// service, keyed by username. Calls carry a short timeout and failures
// degrade to "no location data" for the caller.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Enabled reports whether a remote service is configured at all.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// PushLocation mirrors a coordinate update to the external service. The
// coordinate rides in the path as an encoded "longitude_latitude" segment.
func (c *Client) PushLocation(ctx context.Context, username string, lat, lng float64) error {
	if !c.Enabled() {
		return nil
	}

	segment := url.PathEscape(fmt.Sprintf("%f_%f", lng, lat))
	endpoint := fmt.Sprintf("%s/location/%s/%s", c.baseURL, url.PathEscape(username), segment)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create location request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("location service unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("location service returned status %d", resp.StatusCode)
	}
	return nil
}

// FetchLocation asks the external service for a user's current position.
// A not-found answer maps to (nil, nil).
func (c *Client) FetchLocation(ctx context.Context, username string) (*RemoteLocation, error) {
	if !c.Enabled() {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/location/%s", c.baseURL, url.PathEscape(username))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create location request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("location service returned status %d", resp.StatusCode)
	}

	var remote RemoteLocation
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("failed to decode location response: %w", err)
	}

	// some deployments answer 200 with a "not found" detail instead of 404
	if remote.Username == "" && remote.Latitude == 0 && remote.Longitude == 0 {
		return nil, nil
	}

	return &remote, nil
}
