// Package weather wraps the OpenWeather API: a geocoding lookup to resolve
// the location name, then a current-conditions query for the coordinates.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"
	"unicode"
)

// ErrLocationNotFound is returned when geocoding resolves no coordinates for
// the requested location.
var ErrLocationNotFound = errors.New("location not found")

// Report is the current weather at a resolved location. Temperatures are in
// °C, wind in km/h.
type Report struct {
	Location   string
	Country    string
	Temp       int
	FeelsLike  int
	Conditions string
	Humidity   int
	WindKMH    int
}

// Client calls the OpenWeather API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Client for the given API base URL and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type geoResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type weatherResponse struct {
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s with metric units
	} `json:"wind"`
}

// Current resolves the location and returns its current conditions.
func (c *Client) Current(ctx context.Context, location string) (*Report, error) {
	geo, err := c.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	cond, err := c.conditions(ctx, geo.Lat, geo.Lon)
	if err != nil {
		return nil, err
	}

	var description string
	if len(cond.Weather) > 0 {
		description = capitalize(cond.Weather[0].Description)
	}

	return &Report{
		Location:   geo.Name,
		Country:    geo.Country,
		Temp:       int(math.Round(cond.Main.Temp)),
		FeelsLike:  int(math.Round(cond.Main.FeelsLike)),
		Conditions: description,
		Humidity:   cond.Main.Humidity,
		WindKMH:    int(math.Round(cond.Wind.Speed * 3.6)),
	}, nil
}

func (c *Client) geocode(ctx context.Context, location string) (*geoResult, error) {
	u := fmt.Sprintf("%s/geo/1.0/direct?q=%s&limit=1&appid=%s",
		c.baseURL, url.QueryEscape(location), url.QueryEscape(c.apiKey))

	var results []geoResult
	if err := c.getJSON(ctx, u, &results); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", location, err)
	}
	if len(results) == 0 {
		return nil, ErrLocationNotFound
	}
	return &results[0], nil
}

func (c *Client) conditions(ctx context.Context, lat, lon float64) (*weatherResponse, error) {
	u := fmt.Sprintf("%s/data/2.5/weather?lat=%f&lon=%f&appid=%s&units=metric",
		c.baseURL, lat, lon, url.QueryEscape(c.apiKey))

	var resp weatherResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("fetching conditions: %w", err)
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
