// SPDX-License-Identifier: AGPL-3.0-only

// Package weather implements the tools behind the bundled demo MCP server:
// active alerts and forecasts from the US National Weather Service API.
// Failures are reported as human-readable strings rather than errors, since
// the output goes straight back to the model as a tool result.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.weather.gov"
	// The NWS API requires a User-Agent identifying the application.
	userAgent = "mcp-agent-weather/1.0"
)

// Client fetches data from the National Weather Service API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client against the public NWS API.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// get fetches a single NWS endpoint and decodes the GeoJSON response.
func (c *Client) get(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("nws: unexpected status %d for %s", resp.StatusCode, url)
	}

	var data map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// ActiveAlerts returns the active weather alerts for a two-letter US state
// code, formatted one alert per section.
func (c *Client) ActiveAlerts(ctx context.Context, state string) string {
	url := fmt.Sprintf("%s/alerts/active/area/%s", c.baseURL, state)

	data, err := c.get(ctx, url)
	if err != nil {
		return "Unable to fetch alerts or no alerts found."
	}

	features, ok := data["features"].([]interface{})
	if !ok {
		return "Unable to fetch alerts or no alerts found."
	}
	if len(features) == 0 {
		return "No active alerts for this state."
	}

	alerts := make([]string, 0, len(features))
	for _, f := range features {
		feature, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		alerts = append(alerts, formatAlert(feature))
	}
	return joinSections(alerts)
}

// Forecast returns the short-term forecast for a location. The NWS API
// resolves coordinates to a gridpoint first, then serves the forecast from a
// URL embedded in the gridpoint metadata.
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64) string {
	pointsURL := fmt.Sprintf("%s/points/%v,%v", c.baseURL, latitude, longitude)
	pointsData, err := c.get(ctx, pointsURL)
	if err != nil {
		return "Unable to fetch forecast data for this location."
	}

	forecastURL := stringAt(pointsData, "properties", "forecast")
	if forecastURL == "" {
		return "Unable to fetch forecast data for this location."
	}

	forecastData, err := c.get(ctx, forecastURL)
	if err != nil {
		return "Unable to fetch detailed forecast."
	}

	props, _ := forecastData["properties"].(map[string]interface{})
	periods, _ := props["periods"].([]interface{})
	if len(periods) == 0 {
		return "Unable to fetch detailed forecast."
	}
	// Only the next 5 periods.
	if len(periods) > 5 {
		periods = periods[:5]
	}

	forecasts := make([]string, 0, len(periods))
	for _, p := range periods {
		period, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		forecasts = append(forecasts, formatPeriod(period))
	}
	return joinSections(forecasts)
}

// formatAlert converts one raw alert feature into a readable block.
func formatAlert(feature map[string]interface{}) string {
	props, _ := feature["properties"].(map[string]interface{})
	return fmt.Sprintf(`
Event: %s
Area: %s
Severity: %s
Description: %s
Instructions: %s
`,
		getString(props, "event", "Unknown"),
		getString(props, "areaDesc", "Unknown"),
		getString(props, "severity", "Unknown"),
		getString(props, "description", "No description available"),
		getString(props, "instruction", "No specific instructions provided"),
	)
}

// formatPeriod converts one forecast period into a readable block.
func formatPeriod(period map[string]interface{}) string {
	return fmt.Sprintf(`
%s:
Temperature: %v°%s
Wind: %s %s
Forecast: %s
`,
		getString(period, "name", "Unknown"),
		period["temperature"],
		getString(period, "temperatureUnit", ""),
		getString(period, "windSpeed", ""),
		getString(period, "windDirection", ""),
		getString(period, "detailedForecast", ""),
	)
}

func joinSections(sections []string) string {
	out := ""
	for i, s := range sections {
		if i > 0 {
			out += "\n---\n"
		}
		out += s
	}
	return out
}

func getString(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func stringAt(m map[string]interface{}, keys ...string) string {
	cur := m
	for i, k := range keys {
		if i == len(keys)-1 {
			s, _ := cur[k].(string)
			return s
		}
		next, ok := cur[k].(map[string]interface{})
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}
