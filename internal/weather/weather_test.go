// SPDX-License-Identifier: AGPL-3.0-only
package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestClient points a Client at a stub NWS server.
func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    srv.URL,
	}
	return c, srv
}

func TestActiveAlerts_NoAlerts(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/alerts/active/area/CA" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("Expected User-Agent %q, got %q", userAgent, ua)
		}
		w.Write([]byte(`{"features": []}`))
	}))
	defer srv.Close()

	got := c.ActiveAlerts(context.Background(), "CA")
	if got != "No active alerts for this state." {
		t.Errorf("Expected no-alerts message, got %q", got)
	}
}

func TestActiveAlerts_FormatsAlerts(t *testing.T) {
	body := `{
		"features": [
			{
				"properties": {
					"event": "Flood Warning",
					"areaDesc": "Sacramento County",
					"severity": "Severe",
					"description": "River levels rising.",
					"instruction": "Move to higher ground."
				}
			},
			{
				"properties": {
					"event": "Heat Advisory",
					"areaDesc": "Inland Valleys",
					"severity": "Moderate"
				}
			}
		]
	}`
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	got := c.ActiveAlerts(context.Background(), "CA")

	for _, want := range []string{
		"Event: Flood Warning",
		"Area: Sacramento County",
		"Severity: Severe",
		"Instructions: Move to higher ground.",
		"Event: Heat Advisory",
		// Missing fields fall back to placeholders.
		"Description: No description available",
		"Instructions: No specific instructions provided",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}
	if !strings.Contains(got, "\n---\n") {
		t.Error("Expected alerts to be separated by ---")
	}
}

func TestActiveAlerts_ServerError(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	got := c.ActiveAlerts(context.Background(), "CA")
	if got != "Unable to fetch alerts or no alerts found." {
		t.Errorf("Expected fetch-failure message, got %q", got)
	}
}

func TestForecast(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/points/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"properties": {"forecast": "` + srv.URL + `/gridpoints/MTR/85,105/forecast"}}`))
	})
	mux.HandleFunc("/gridpoints/MTR/85,105/forecast", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{
			"properties": {
				"periods": [
					{
						"name": "Tonight",
						"temperature": 58,
						"temperatureUnit": "F",
						"windSpeed": "5 mph",
						"windDirection": "W",
						"detailedForecast": "Patchy fog after midnight."
					},
					{
						"name": "Monday",
						"temperature": 72,
						"temperatureUnit": "F",
						"windSpeed": "10 mph",
						"windDirection": "NW",
						"detailedForecast": "Sunny."
					}
				]
			}
		}`))
	})
	c, s := newTestClient(mux)
	srv = s
	defer srv.Close()

	got := c.Forecast(context.Background(), 37.77, -122.42)

	for _, want := range []string{
		"Tonight:",
		"Temperature: 58°F",
		"Wind: 5 mph W",
		"Patchy fog after midnight.",
		"Monday:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected forecast to contain %q, got:\n%s", want, got)
		}
	}
}

func TestForecast_LimitsToFivePeriods(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/points/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"properties": {"forecast": "` + srv.URL + `/forecast"}}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, _ *http.Request) {
		periods := make([]string, 0, 8)
		names := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8"}
		for _, n := range names {
			periods = append(periods, `{"name":"`+n+`","temperature":60,"temperatureUnit":"F"}`)
		}
		w.Write([]byte(`{"properties":{"periods":[` + strings.Join(periods, ",") + `]}}`))
	})
	c, s := newTestClient(mux)
	srv = s
	defer srv.Close()

	got := c.Forecast(context.Background(), 40.0, -100.0)

	if !strings.Contains(got, "P5:") {
		t.Error("Expected fifth period to be included")
	}
	if strings.Contains(got, "P6:") {
		t.Error("Expected periods past the fifth to be dropped")
	}
}

func TestForecast_PointLookupFails(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	got := c.Forecast(context.Background(), 0, 0)
	if got != "Unable to fetch forecast data for this location." {
		t.Errorf("Expected point-lookup failure message, got %q", got)
	}
}

func TestForecast_MissingForecastURL(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"properties": {}}`))
	}))
	defer srv.Close()

	got := c.Forecast(context.Background(), 37.77, -122.42)
	if got != "Unable to fetch forecast data for this location." {
		t.Errorf("Expected failure message, got %q", got)
	}
}

func TestStringAt(t *testing.T) {
	m := map[string]interface{}{
		"properties": map[string]interface{}{
			"forecast": "http://example.test/f",
		},
	}
	if got := stringAt(m, "properties", "forecast"); got != "http://example.test/f" {
		t.Errorf("Expected nested lookup, got %q", got)
	}
	if got := stringAt(m, "properties", "missing"); got != "" {
		t.Errorf("Expected empty string for missing key, got %q", got)
	}
	if got := stringAt(m, "nope", "forecast"); got != "" {
		t.Errorf("Expected empty string for missing path, got %q", got)
	}
}
