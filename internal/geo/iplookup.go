// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultLookupURL returns the caller's approximate location as JSON.
	DefaultLookupURL = "https://ipapi.co/json/"

	// DefaultLookupTimeout bounds a single lookup.
	DefaultLookupTimeout = 5 * time.Second

	maxLookupResponse = 64 * 1024
)

// IPLookup estimates the location from the public IP address.
type IPLookup struct {
	url        string
	httpClient *http.Client
}

// NewIPLookup creates a locator querying url, or DefaultLookupURL when empty.
func NewIPLookup(url string) *IPLookup {
	if url == "" {
		url = DefaultLookupURL
	}
	return &IPLookup{
		url:        url,
		httpClient: &http.Client{Timeout: DefaultLookupTimeout},
	}
}

// WithHTTPClient sets the HTTP client used for lookups.
func (l *IPLookup) WithHTTPClient(c *http.Client) *IPLookup {
	l.httpClient = c
	return l
}

type lookupResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

// Locate performs the lookup.
func (l *IPLookup) Locate(ctx context.Context) (Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return Coordinates{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return Coordinates{}, fmt.Errorf("location lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("location lookup returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLookupResponse)).Decode(&body); err != nil {
		return Coordinates{}, fmt.Errorf("failed to parse location: %w", err)
	}
	if body.Error {
		return Coordinates{}, fmt.Errorf("location lookup refused: %s", body.Reason)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return Coordinates{}, fmt.Errorf("location lookup returned no coordinates")
	}

	c := Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude}
	return c, c.Validate()
}
