// Package weather wraps the external conditions and reverse-geocoding
// providers. The core only consumes resolved values; failures here are
// always non-fatal to attendance flows.
package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	forecastURL string
	geocodeURL  string
	httpClient  *http.Client
}

func NewClient(forecastURL, geocodeURL string) *Client {
	return &Client{
		forecastURL: forecastURL,
		geocodeURL:  geocodeURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Conditions is the current-weather payload surfaced to the UI.
type Conditions struct {
	Temperature   float64 `json:"temperature"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weather_code"`
	Description   string  `json:"description,omitempty"`
}

type currentResponse struct {
	Current struct {
		Temperature   float64 `json:"temperature_2m"`
		WindSpeed     float64 `json:"wind_speed_10m"`
		Precipitation float64 `json:"precipitation"`
		WeatherCode   int     `json:"weather_code"`
	} `json:"current"`
}

// Current fetches the current conditions for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Conditions, error) {
	path := fmt.Sprintf("/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,wind_speed_10m,precipitation,weather_code", lat, lon)
	var resp currentResponse
	if err := c.doJSON(ctx, "GET", c.forecastURL+path, nil, &resp); err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}
	return &Conditions{
		Temperature:   resp.Current.Temperature,
		WindSpeed:     resp.Current.WindSpeed,
		Precipitation: resp.Current.Precipitation,
		WeatherCode:   resp.Current.WeatherCode,
		Description:   describeCode(resp.Current.WeatherCode),
	}, nil
}

// WMO weather interpretation codes, grouped.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	case code <= 99:
		return "thunderstorm"
	default:
		return ""
	}
}

type geocodeResponse struct {
	Results []struct {
		Name    string `json:"name"`
		Admin1  string `json:"admin1"`
		Country string `json:"country"`
	} `json:"results"`
}

// ReverseGeocode resolves a coordinate to a display address string, or ""
// when nothing matches.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	path := fmt.Sprintf("/v1/reverse?latitude=%.4f&longitude=%.4f&count=1", lat, lon)
	var resp geocodeResponse
	if err := c.doJSON(ctx, "GET", c.geocodeURL+path, nil, &resp); err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	r := resp.Results[0]
	addr := r.Name
	if r.Admin1 != "" {
		addr += ", " + r.Admin1
	}
	if r.Country != "" {
		addr += ", " + r.Country
	}
	return addr, nil
}

func (c *Client) doJSON(ctx context.Context, method, url string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
