// Package nominatim resolves place names to coordinates using the
// OpenStreetMap Nominatim search API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/disaster-response-service/internal/domain"
)

// Client implements domain.PlaceResolver.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. baseURL is the instance root, e.g.
// "https://nominatim.openstreetmap.org".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// ResolvePlace searches for the place name and returns the best match.
// ok=false means the search produced no results.
func (c *Client) ResolvePlace(ctx context.Context, name string) (domain.Coordinates, bool, error) {
	params := url.Values{
		"format": {"json"},
		"q":      {name},
		"limit":  {"1"},
	}
	u := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("nominatim search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Coordinates{}, false, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return domain.Coordinates{}, false, nil
	}

	best := places[0]
	lat, errLat := strconv.ParseFloat(best.Lat, 64)
	lon, errLon := strconv.ParseFloat(best.Lon, 64)
	if errLat != nil || errLon != nil {
		return domain.Coordinates{}, false, fmt.Errorf("parse coordinates %q,%q for %q", best.Lat, best.Lon, name)
	}

	return domain.Coordinates{Lat: lat, Lon: lon}, true, nil
}

// Nominatim returns lat/lon as JSON strings.
type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
